// Package model defines the core records of the shift planning engine.
package model

import (
	"time"

	"github.com/google/uuid"
)

// DateFormat is the canonical date layout used across the engine.
const DateFormat = "2006-01-02"

// BaseModel holds the fields shared by every persisted record.
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel creates a BaseModel with a fresh id and timestamps.
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

// Contains reports whether date falls inside the range (inclusive).
func (r DateRange) Contains(date string) bool {
	return date >= r.StartDate && date <= r.EndDate
}

// Valid reports whether both bounds parse and are ordered.
func (r DateRange) Valid() bool {
	s, err1 := time.Parse(DateFormat, r.StartDate)
	e, err2 := time.Parse(DateFormat, r.EndDate)
	return err1 == nil && err2 == nil && !e.Before(s)
}

// Dates expands the range into its individual days.
func (r DateRange) Dates() []string {
	if !r.Valid() {
		return nil
	}
	var dates []string
	t, _ := time.Parse(DateFormat, r.StartDate)
	end, _ := time.Parse(DateFormat, r.EndDate)
	for !t.After(end) {
		dates = append(dates, t.Format(DateFormat))
		t = t.AddDate(0, 0, 1)
	}
	return dates
}

// PreviousDate returns the day before the given date.
func PreviousDate(date string) string {
	t, err := time.Parse(DateFormat, date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format(DateFormat)
}

// NextDate returns the day after the given date.
func NextDate(date string) string {
	t, err := time.Parse(DateFormat, date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, 1).Format(DateFormat)
}

// Weekday returns the weekday of a date string. Malformed dates map to Sunday.
func Weekday(date string) time.Weekday {
	t, err := time.Parse(DateFormat, date)
	if err != nil {
		return time.Sunday
	}
	return t.Weekday()
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func IsWeekend(date string) bool {
	wd := Weekday(date)
	return wd == time.Saturday || wd == time.Sunday
}
