package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/domain/model"
)

func TestMemStoreRecords(t *testing.T) {
	Convey("Given an in-memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		So(store.Init(ctx), ShouldBeNil)

		Convey("When the same key is upserted twice", func() {
			So(store.UpsertRecord(ctx, "2025-01-06", "Aki", model.TypeNew, 3), ShouldBeNil)
			So(store.UpsertRecord(ctx, "2025-01-06", "Aki", model.TypeNew, 2), ShouldBeNil)

			Convey("Then counts accumulate on one record", func() {
				recs, err := store.LoadAllRecords(ctx)
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 1)
				So(recs[0].Count, ShouldEqual, 5)
			})
		})

		Convey("When a new key is upserted", func() {
			So(store.UpsertRecord(ctx, "2024-12-30", "Mio", model.TypeSurvey, 4), ShouldBeNil)

			Convey("Then the week derives from the date", func() {
				recs, err := store.LoadAllRecords(ctx)
				So(err, ShouldBeNil)
				So(recs[0].Week, ShouldEqual, 1)
			})
		})

		Convey("When keys differ in any component", func() {
			So(store.UpsertRecord(ctx, "2025-01-06", "Aki", model.TypeNew, 3), ShouldBeNil)
			So(store.UpsertRecord(ctx, "2025-01-06", "Aki", model.TypeExist, 3), ShouldBeNil)
			So(store.UpsertRecord(ctx, "2025-01-06", "Mio", model.TypeNew, 3), ShouldBeNil)
			So(store.UpsertRecord(ctx, "2025-01-07", "Aki", model.TypeNew, 3), ShouldBeNil)

			Convey("Then each lands on its own record", func() {
				recs, err := store.LoadAllRecords(ctx)
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 4)
			})
		})

		Convey("When deleting", func() {
			So(store.UpsertRecord(ctx, "2025-01-06", "Aki", model.TypeNew, 3), ShouldBeNil)

			deleted, err := store.DeleteRecord(ctx, "2025-01-06", "Aki", model.TypeNew)
			So(err, ShouldBeNil)
			So(deleted, ShouldBeTrue)

			deleted, err = store.DeleteRecord(ctx, "2025-01-06", "Aki", model.TypeNew)
			So(err, ShouldBeNil)
			So(deleted, ShouldBeFalse)
		})
	})
}

func TestMemStoreTargets(t *testing.T) {
	Convey("Given targets in the in-memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()

		Convey("An absent target reads as zero", func() {
			got, err := store.GetTarget(ctx, "2025-01", model.CategoryApp)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, 0)
		})

		Convey("Setting twice replaces, never accumulates", func() {
			So(store.SetTarget(ctx, "2025-01", model.CategoryApp, 100), ShouldBeNil)
			So(store.SetTarget(ctx, "2025-01", model.CategoryApp, 150), ShouldBeNil)

			got, err := store.GetTarget(ctx, "2025-01", model.CategoryApp)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, 150)
		})

		Convey("Categories are independent keys", func() {
			So(store.SetTarget(ctx, "2025-01", model.CategoryApp, 100), ShouldBeNil)
			So(store.SetTarget(ctx, "2025-01", model.CategorySurvey, 30), ShouldBeNil)

			got, err := store.GetTarget(ctx, "2025-01", model.CategorySurvey)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, 30)
		})
	})
}

func TestMemStorePersistence(t *testing.T) {
	Convey("Given a file-backed store", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "fallback.json")

		store := repository.NewMemStore(repository.WithFile(path))
		So(store.Init(ctx), ShouldBeNil)
		So(store.UpsertRecord(ctx, "2025-01-06", "Aki", model.TypeNew, 3), ShouldBeNil)
		So(store.SetTarget(ctx, "2025-01", model.CategoryApp, 100), ShouldBeNil)

		Convey("When a fresh store opens the same file", func() {
			reopened := repository.NewMemStore(repository.WithFile(path))
			So(reopened.Init(ctx), ShouldBeNil)

			Convey("Then records and targets survive", func() {
				recs, err := reopened.LoadAllRecords(ctx)
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 1)
				So(recs[0].Name, ShouldEqual, "Aki")

				got, err := reopened.GetTarget(ctx, "2025-01", model.CategoryApp)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, 100)
			})
		})

		Convey("When the file is corrupt", func() {
			So(os.WriteFile(path, []byte("{not json"), 0o600), ShouldBeNil)

			reopened := repository.NewMemStore(repository.WithFile(path))

			Convey("Then Init starts fresh instead of failing", func() {
				So(reopened.Init(ctx), ShouldBeNil)
				recs, err := reopened.LoadAllRecords(ctx)
				So(err, ShouldBeNil)
				So(recs, ShouldBeEmpty)
			})
		})

		Convey("When no file exists yet", func() {
			fresh := repository.NewMemStore(repository.WithFile(filepath.Join(t.TempDir(), "missing.json")))
			So(fresh.Init(ctx), ShouldBeNil)
		})
	})
}
