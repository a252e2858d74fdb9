// Package model contains the domain types passed between layers.
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RecordType enumerates the outreach activity categories.
type RecordType string

// Known activity types.
const (
	TypeNew    RecordType = "new"
	TypeExist  RecordType = "exist"
	TypeLine   RecordType = "line"
	TypeSurvey RecordType = "survey"
)

// Valid reports whether t is one of the known activity types.
func (t RecordType) Valid() bool {
	switch t {
	case TypeNew, TypeExist, TypeLine, TypeSurvey:
		return true
	}
	return false
}

// Category enumerates the target planning categories. The app category
// aggregates new, exist and line activity; survey stands alone.
type Category string

// Known target categories.
const (
	CategoryApp    Category = "app"
	CategorySurvey Category = "survey"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c == CategoryApp || c == CategorySurvey
}

// Covers reports whether records of type t count toward category c.
func (c Category) Covers(t RecordType) bool {
	switch c {
	case CategoryApp:
		return t == TypeNew || t == TypeExist || t == TypeLine
	case CategorySurvey:
		return t == TypeSurvey
	}
	return false
}

// Record is one observed activity count. The triple (Date, Name, Type)
// is the natural key; upserts with the same key add to Count.
type Record struct {
	Date  string     `json:"date"` // YYYY-MM-DD
	Week  int        `json:"week"` // ISO-8601 week number, derived from Date
	Name  string     `json:"name"` // staff identifier, case-sensitive
	Type  RecordType `json:"type"`
	Count int        `json:"count"`
}

// RecordKey is the composite natural key of a record.
type RecordKey struct {
	Date string
	Name string
	Type RecordType
}

// Key returns the record's composite key.
func (r Record) Key() RecordKey {
	return RecordKey{Date: r.Date, Name: r.Name, Type: r.Type}
}

// Validate checks the invariants callers must honor before a write.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Date) == "" {
		return fmt.Errorf("%w: missing date", ErrInvalidRecord)
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return fmt.Errorf("%w: date %q is not %s", ErrInvalidRecord, r.Date, DateLayout)
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidRecord)
	}
	if !r.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidRecord, r.Type)
	}
	if r.Count < 0 {
		return fmt.Errorf("%w: negative count %d", ErrInvalidRecord, r.Count)
	}
	return nil
}

// Target is a single planning goal keyed by (Period, Category).
// Writes replace, unlike the additive record upserts.
type Target struct {
	Period   string   `json:"period"` // YYYY-MM monthly, YYYY-Www weekly
	Category Category `json:"category"`
	Target   int      `json:"target"`
}

// TargetKey is the composite key of a target.
type TargetKey struct {
	Period   string
	Category Category
}

// Key returns the target's composite key.
func (t Target) Key() TargetKey {
	return TargetKey{Period: t.Period, Category: t.Category}
}

// Validate checks the invariants callers must honor before a write.
func (t Target) Validate() error {
	if strings.TrimSpace(t.Period) == "" {
		return fmt.Errorf("%w: missing period", ErrInvalidTarget)
	}
	if !t.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidTarget, t.Category)
	}
	if t.Target < 0 {
		return fmt.Errorf("%w: negative target %d", ErrInvalidTarget, t.Target)
	}
	return nil
}

// ParseCount coerces a stored count cell to an integer, defaulting to
// zero when the cell does not parse.
func ParseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
