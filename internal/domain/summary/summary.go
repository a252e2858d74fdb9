// Package summary aggregates loaded records into the period reports the
// dashboard presents: totals per category and staff member, compared
// against the stored target for the period.
package summary

import (
	"github.com/okian/tally/internal/domain/model"
)

// Report holds the aggregated counts for one period.
type Report struct {
	Period string `json:"period"`

	// App aggregates new + exist + line; Survey stands alone.
	App    int `json:"app"`
	Survey int `json:"survey"`

	ByType  map[model.RecordType]int `json:"by_type"`
	ByStaff map[string]int           `json:"by_staff"`

	AppTarget    int     `json:"app_target"`
	SurveyTarget int     `json:"survey_target"`
	AppRate      float64 `json:"app_rate"`
	SurveyRate   float64 `json:"survey_rate"`
}

// ForMonth aggregates the records whose date falls in the given
// YYYY-MM month.
func ForMonth(records []model.Record, month string) Report {
	return build(records, month, func(r model.Record) bool {
		return model.MonthOf(r.Date) == month
	})
}

// ForWeek aggregates the records whose date falls in the given ISO
// (year, week). The week stored on the record is not trusted; membership
// is derived from the date.
func ForWeek(records []model.Record, year, week int) Report {
	return build(records, model.WeeklyPeriod(year, week), func(r model.Record) bool {
		y, w := model.ISOYearWeek(r.Date)
		return y == year && w == week
	})
}

func build(records []model.Record, period string, in func(model.Record) bool) Report {
	rep := Report{
		Period:  period,
		ByType:  make(map[model.RecordType]int),
		ByStaff: make(map[string]int),
	}
	for _, r := range records {
		if !in(r) {
			continue
		}
		rep.ByType[r.Type] += r.Count
		rep.ByStaff[r.Name] += r.Count
		if model.CategoryApp.Covers(r.Type) {
			rep.App += r.Count
		}
		if model.CategorySurvey.Covers(r.Type) {
			rep.Survey += r.Count
		}
	}
	return rep
}

// WithTargets attaches the stored targets and fills in achievement rates.
func (r Report) WithTargets(app, survey int) Report {
	r.AppTarget = app
	r.SurveyTarget = survey
	r.AppRate = Rate(r.App, app)
	r.SurveyRate = Rate(r.Survey, survey)
	return r
}

// Rate returns total/target capped at 1.0, or zero when no target is set.
func Rate(total, target int) float64 {
	if target <= 0 {
		return 0
	}
	rate := float64(total) / float64(target)
	if rate > 1 {
		return 1
	}
	return rate
}
