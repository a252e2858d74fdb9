package sheets_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"google.golang.org/api/googleapi"

	"github.com/okian/tally/internal/adapters/sheets"
)

func apiError(code int) error {
	return &googleapi.Error{Code: code, Message: http.StatusText(code)}
}

func TestTransientClassification(t *testing.T) {
	Convey("Given failure classification", t, func() {
		Convey("Rate limiting and server errors are transient", func() {
			So(sheets.Transient(apiError(http.StatusTooManyRequests)), ShouldBeTrue)
			So(sheets.Transient(apiError(http.StatusInternalServerError)), ShouldBeTrue)
			So(sheets.Transient(apiError(http.StatusServiceUnavailable)), ShouldBeTrue)
		})

		Convey("Client errors are permanent", func() {
			So(sheets.Transient(apiError(http.StatusBadRequest)), ShouldBeFalse)
			So(sheets.Transient(apiError(http.StatusForbidden)), ShouldBeFalse)
			So(sheets.Transient(apiError(http.StatusNotFound)), ShouldBeFalse)
		})

		Convey("Errors without a status retry conservatively", func() {
			So(sheets.Transient(errors.New("connection reset")), ShouldBeTrue)
		})
	})
}

func TestRetryerDo(t *testing.T) {
	Convey("Given a retryer with a tiny delay", t, func() {
		ctx := context.Background()
		r := sheets.NewRetryer(sheets.WithMaxRetries(3), sheets.WithBaseDelay(time.Millisecond))

		Convey("A call that succeeds runs once", func() {
			calls := 0
			err := r.Do(ctx, "values.get", func() error {
				calls++
				return nil
			})
			So(err, ShouldBeNil)
			So(calls, ShouldEqual, 1)
		})

		Convey("A transient failure is retried until it succeeds", func() {
			calls := 0
			err := r.Do(ctx, "values.get", func() error {
				calls++
				if calls < 3 {
					return apiError(http.StatusTooManyRequests)
				}
				return nil
			})
			So(err, ShouldBeNil)
			So(calls, ShouldEqual, 3)
		})

		Convey("A permanent failure is raised without retrying", func() {
			calls := 0
			want := apiError(http.StatusBadRequest)
			err := r.Do(ctx, "values.update", func() error {
				calls++
				return want
			})
			So(err, ShouldWrap, want)
			So(calls, ShouldEqual, 1)
		})

		Convey("A statusless failure is retried", func() {
			calls := 0
			err := r.Do(ctx, "values.append", func() error {
				calls++
				if calls == 1 {
					return errors.New("connection reset")
				}
				return nil
			})
			So(err, ShouldBeNil)
			So(calls, ShouldEqual, 2)
		})

		Convey("Exhausting the budget returns the last error", func() {
			short := sheets.NewRetryer(sheets.WithMaxRetries(2), sheets.WithBaseDelay(time.Millisecond))
			calls := 0
			want := apiError(http.StatusServiceUnavailable)
			err := short.Do(ctx, "values.get", func() error {
				calls++
				return want
			})
			So(err, ShouldWrap, want)
			So(calls, ShouldEqual, 3)
		})
	})
}
