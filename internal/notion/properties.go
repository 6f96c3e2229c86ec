package notion

import "time"

// Property names in the Activities and Planned Activities databases.
// These must match the column names configured in Notion.
const (
	PropertyName            = "Name"
	PropertyStravaID        = "Strava ID"
	PropertyType            = "Type"
	PropertyDate            = "Date"
	PropertyDistance        = "Distance"
	PropertyDuration        = "Duration"
	PropertyElevation       = "Elevation"
	PropertyAverageHR       = "Average HR"
	PropertyAveragePace     = "Average Pace"
	PropertyAverageSpeed    = "Average Speed"
	PropertyAveragePower    = "Average Power"
	PropertyCadence         = "Cadence"
	PropertyPlannedActivity = "Planned Activity"
	PropertyStatus          = "Status"
)

// Properties maps property names to Notion property values. Absent keys are
// simply not written; a missing metric must never appear as a zero value.
type Properties map[string]any

type textContent struct {
	Content string `json:"content"`
}

type richText struct {
	Text textContent `json:"text"`
}

type titleValue struct {
	Title []richText `json:"title"`
}

type numberValue struct {
	Number float64 `json:"number"`
}

type selectOption struct {
	Name string `json:"name"`
}

type selectValue struct {
	Select selectOption `json:"select"`
}

type dateContent struct {
	Start string `json:"start"`
}

type dateValue struct {
	Date dateContent `json:"date"`
}

type statusValue struct {
	Status selectOption `json:"status"`
}

type relationRef struct {
	ID string `json:"id"`
}

type relationValue struct {
	Relation []relationRef `json:"relation"`
}

// Title builds a title property value
func Title(content string) any {
	return titleValue{Title: []richText{{Text: textContent{Content: content}}}}
}

// Number builds a number property value
func Number(v float64) any {
	return numberValue{Number: v}
}

// Select builds a select property value
func Select(name string) any {
	return selectValue{Select: selectOption{Name: name}}
}

// Date builds a date property value carrying the full timestamp
func Date(t time.Time) any {
	return dateValue{Date: dateContent{Start: t.Format(time.RFC3339)}}
}

// Status builds a status property value
func Status(name string) any {
	return statusValue{Status: selectOption{Name: name}}
}

// Relation builds a single-target relation property value
func Relation(pageID string) any {
	return relationValue{Relation: []relationRef{{ID: pageID}}}
}
