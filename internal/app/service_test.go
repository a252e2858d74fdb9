package service_test

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/tally/internal/adapters/repository"
	service "github.com/okian/tally/internal/app"
	"github.com/okian/tally/internal/domain/model"
)

func newService(t *testing.T) *service.Service {
	t.Helper()
	svc, err := service.New(service.WithStore(repository.NewMemStore()))
	So(err, ShouldBeNil)
	So(svc.Init(context.Background()), ShouldBeNil)
	return svc
}

func TestNewRequiresStore(t *testing.T) {
	Convey("Given service construction", t, func() {
		Convey("Without a store it refuses to start", func() {
			_, err := service.New()
			So(err, ShouldNotBeNil)
		})

		Convey("With a store it starts", func() {
			svc, err := service.New(service.WithStore(repository.NewMemStore()))
			So(err, ShouldBeNil)
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestSubmitCount(t *testing.T) {
	Convey("Given count submission", t, func() {
		ctx := context.Background()

		Convey("A valid submission lands in the store", func() {
			svc := newService(t)
			So(svc.SubmitCount(ctx, "2025-01-06", "Aki", model.TypeNew, 3), ShouldBeNil)
			So(svc.SubmitCount(ctx, "2025-01-06", "Aki", model.TypeNew, 2), ShouldBeNil)

			recs, err := svc.Records(ctx)
			So(err, ShouldBeNil)
			So(recs, ShouldHaveLength, 1)
			So(recs[0].Count, ShouldEqual, 5)
		})

		Convey("Invalid input is rejected before it reaches the store", func() {
			svc := newService(t)
			So(svc.SubmitCount(ctx, "bad-date", "Aki", model.TypeNew, 3), ShouldWrap, model.ErrInvalidRecord)
			So(svc.SubmitCount(ctx, "2025-01-06", "", model.TypeNew, 3), ShouldWrap, model.ErrInvalidRecord)
			So(svc.SubmitCount(ctx, "2025-01-06", "Aki", model.RecordType("phone"), 3), ShouldWrap, model.ErrInvalidRecord)
			So(svc.SubmitCount(ctx, "2025-01-06", "Aki", model.TypeNew, -1), ShouldWrap, model.ErrInvalidRecord)

			recs, err := svc.Records(ctx)
			So(err, ShouldBeNil)
			So(recs, ShouldBeEmpty)
		})
	})
}

func TestRemoveRecord(t *testing.T) {
	Convey("Given record removal", t, func() {
		ctx := context.Background()
		svc := newService(t)
		So(svc.SubmitCount(ctx, "2025-01-06", "Aki", model.TypeNew, 3), ShouldBeNil)

		Convey("Removing an existing key reports true", func() {
			removed, err := svc.RemoveRecord(ctx, "2025-01-06", "Aki", model.TypeNew)
			So(err, ShouldBeNil)
			So(removed, ShouldBeTrue)
		})

		Convey("Removing an absent key reports false without error", func() {
			removed, err := svc.RemoveRecord(ctx, "2025-01-06", "Nobody", model.TypeNew)
			So(err, ShouldBeNil)
			So(removed, ShouldBeFalse)
		})

		Convey("An invalid key is rejected", func() {
			_, err := svc.RemoveRecord(ctx, "06/01/2025", "Aki", model.TypeNew)
			So(err, ShouldWrap, model.ErrInvalidRecord)
		})
	})
}

func TestTargets(t *testing.T) {
	Convey("Given target management", t, func() {
		ctx := context.Background()
		svc := newService(t)

		Convey("A set target reads back and replaces on rewrite", func() {
			So(svc.SetTarget(ctx, "2025-01", model.CategoryApp, 100), ShouldBeNil)
			So(svc.SetTarget(ctx, "2025-01", model.CategoryApp, 150), ShouldBeNil)

			got, err := svc.Target(ctx, "2025-01", model.CategoryApp)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, 150)
		})

		Convey("An unknown category is rejected on both paths", func() {
			So(svc.SetTarget(ctx, "2025-01", model.Category("email"), 10), ShouldWrap, model.ErrInvalidTarget)

			_, err := svc.Target(ctx, "2025-01", model.Category("email"))
			So(err, ShouldWrap, model.ErrInvalidTarget)
		})
	})
}

func TestSummaries(t *testing.T) {
	Convey("Given summaries over submitted counts", t, func() {
		ctx := context.Background()
		svc := newService(t)

		So(svc.SubmitCount(ctx, "2025-01-06", "Aki", model.TypeNew, 3), ShouldBeNil)
		So(svc.SubmitCount(ctx, "2025-01-07", "Aki", model.TypeExist, 2), ShouldBeNil)
		So(svc.SubmitCount(ctx, "2025-01-08", "Mio", model.TypeSurvey, 5), ShouldBeNil)
		So(svc.SubmitCount(ctx, "2025-02-03", "Mio", model.TypeLine, 7), ShouldBeNil)
		So(svc.SetTarget(ctx, "2025-01", model.CategoryApp, 10), ShouldBeNil)
		So(svc.SetTarget(ctx, "2025-01", model.CategorySurvey, 5), ShouldBeNil)

		Convey("The monthly summary joins counts with its targets", func() {
			rep, err := svc.MonthlySummary(ctx, "2025-01")
			So(err, ShouldBeNil)
			So(rep.App, ShouldEqual, 5)
			So(rep.Survey, ShouldEqual, 5)
			So(rep.AppRate, ShouldEqual, 0.5)
			So(rep.SurveyRate, ShouldEqual, 1.0)
		})

		Convey("The weekly summary keys its targets by the ISO period", func() {
			So(svc.SetTarget(ctx, "2025-W02", model.CategoryApp, 5), ShouldBeNil)

			rep, err := svc.WeeklySummary(ctx, 2025, 2)
			So(err, ShouldBeNil)
			So(rep.Period, ShouldEqual, "2025-W02")
			So(rep.App, ShouldEqual, 5)
			So(rep.AppTarget, ShouldEqual, 5)
			So(rep.AppRate, ShouldEqual, 1.0)
		})

		Convey("A month with no activity reports zeros", func() {
			rep, err := svc.MonthlySummary(ctx, "2025-06")
			So(err, ShouldBeNil)
			So(rep.App, ShouldEqual, 0)
			So(rep.Survey, ShouldEqual, 0)
			So(rep.AppRate, ShouldEqual, 0)
		})
	})
}
