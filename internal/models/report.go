package models

import "fmt"

type StepReport struct {
	Today         int64
	WeeklyAverage int64
}

// Line renders the report as written to the output file.
func (r StepReport) Line() string {
	return fmt.Sprintf(" Steps: %d / %d", r.Today, r.WeeklyAverage)
}
