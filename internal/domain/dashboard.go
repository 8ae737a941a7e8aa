package domain

import "time"

// DateLayout formats timeline buckets.
const DateLayout = "2006-01-02"

// SourceCount is the number of signups attributed to one source label.
type SourceCount struct {
	Source string
	Count  int64
}

// DayCount is the number of signups on one calendar day.
type DayCount struct {
	Date  string
	Count int64
}

// DashboardSnapshot is the aggregate view rendered on the admin dashboard.
type DashboardSnapshot struct {
	Total       int64
	Today       int64
	ThisWeek    int64
	BySource    []SourceCount
	Timeline    []DayCount
	Recent      []SignupRecord
	GeneratedAt time.Time
}

// SignupPage is one page of the admin signup listing.
type SignupPage struct {
	Items    []SignupRecord
	Total    int64
	Page     int
	PageSize int
}
