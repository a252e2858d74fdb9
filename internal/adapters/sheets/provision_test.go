package sheets_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/tally/internal/adapters/sheets"
	"github.com/okian/tally/internal/domain/schema"
)

func TestEnsureCreatesMissingWorksheet(t *testing.T) {
	Convey("Given a workbook without the records worksheet", t, func() {
		ctx := context.Background()
		wb := newFakeWorkbook()
		prov := sheets.NewProvisioner()

		Convey("When Ensure runs", func() {
			ws, err := prov.Ensure(ctx, wb, schema.RecordsSheet, schema.RecordsHeader)
			So(err, ShouldBeNil)
			So(ws, ShouldNotBeNil)

			Convey("Then the worksheet is created with at least 26 columns", func() {
				So(wb.addCalls, ShouldEqual, 1)
				So(wb.lastCols, ShouldEqual, 26)
				So(wb.lastRows, ShouldEqual, 1000)
			})

			Convey("And row 1 holds the canonical header", func() {
				first, rerr := ws.Row(ctx, 1)
				So(rerr, ShouldBeNil)
				So(first, ShouldResemble, schema.RecordsHeader)
			})
		})
	})
}

func TestEnsureIsIdempotent(t *testing.T) {
	Convey("Given a worksheet that already carries the canonical header", t, func() {
		ctx := context.Background()
		wb := newFakeWorkbook()
		prov := sheets.NewProvisioner()

		_, err := prov.Ensure(ctx, wb, schema.TargetsSheet, schema.TargetsHeader)
		So(err, ShouldBeNil)
		ws := wb.worksheets[schema.TargetsSheet]
		writesAfterCreate := ws.writes

		Convey("When Ensure runs again", func() {
			_, err := prov.Ensure(ctx, wb, schema.TargetsSheet, schema.TargetsHeader)
			So(err, ShouldBeNil)

			Convey("Then no further writes happen", func() {
				So(ws.writes, ShouldEqual, writesAfterCreate)
			})
		})
	})
}

func TestEnsureRepairsDriftedHeader(t *testing.T) {
	Convey("Given a worksheet whose header has drifted", t, func() {
		ctx := context.Background()
		wb := newFakeWorkbook()
		wb.worksheets[schema.RecordsSheet] = &fakeWorksheet{
			title: schema.RecordsSheet,
			rows:  [][]string{{"date", "name", "count"}},
		}
		prov := sheets.NewProvisioner()

		Convey("When Ensure runs", func() {
			ws, err := prov.Ensure(ctx, wb, schema.RecordsSheet, schema.RecordsHeader)
			So(err, ShouldBeNil)

			Convey("Then row 1 is rewritten to the canonical header", func() {
				first, rerr := ws.Row(ctx, 1)
				So(rerr, ShouldBeNil)
				So(first, ShouldResemble, schema.RecordsHeader)
			})

			Convey("And no new worksheet was created", func() {
				So(wb.addCalls, ShouldEqual, 0)
			})
		})
	})
}

func TestEnsureTreatsFailedHeaderReadAsEmpty(t *testing.T) {
	Convey("Given a worksheet whose header read fails", t, func() {
		ctx := context.Background()
		wb := newFakeWorkbook()
		broken := &fakeWorksheet{
			title:  schema.RecordsSheet,
			rows:   [][]string{schema.RecordsHeader},
			rowErr: errors.New("read timed out"),
		}
		wb.worksheets[schema.RecordsSheet] = broken
		prov := sheets.NewProvisioner()

		Convey("When Ensure runs", func() {
			_, err := prov.Ensure(ctx, wb, schema.RecordsSheet, schema.RecordsHeader)
			So(err, ShouldBeNil)

			Convey("Then the header is rewritten rather than trusted", func() {
				So(broken.writes, ShouldEqual, 1)
			})
		})
	})
}
