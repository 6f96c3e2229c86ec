package sync

import (
	"strava-notion-sync/internal/notion"
	"strava-notion-sync/internal/strava"
)

// SportType is the simplified activity category known to the Notion
// databases
type SportType string

const (
	SportRun   SportType = "Run"
	SportRide  SportType = "Ride"
	SportSwim  SportType = "Swim"
	SportOther SportType = "Other"
)

// sportTypeMap collapses Strava's fine-grained sport types into the
// simplified categories
var sportTypeMap = map[string]SportType{
	"Run":              SportRun,
	"TrailRun":         SportRun,
	"VirtualRun":       SportRun,
	"Ride":             SportRide,
	"VirtualRide":      SportRide,
	"MountainBikeRide": SportRide,
	"GravelRide":       SportRide,
	"EBikeRide":        SportRide,
	"Swim":             SportSwim,
	"OpenWaterSwim":    SportSwim,
}

// ClassifySport determines the sport category for an activity, falling
// back to the legacy type field when sport_type is absent
func ClassifySport(a strava.Activity) SportType {
	raw := a.SportType
	if raw == "" {
		raw = a.Type
	}

	if sport, ok := sportTypeMap[raw]; ok {
		return sport
	}
	return SportOther
}

// sportFields maps each supported sport type to its metric extractor.
// Extractors add properties only when the source metric is present; a
// missing metric is omitted, never written as zero.
var sportFields = map[SportType]func(strava.Activity, notion.Properties){
	SportRun:  runFields,
	SportRide: rideFields,
	SportSwim: swimFields,
}

// BuildProperties assembles the Notion property set for an activity:
// common fields for every sport plus the sport-specific metrics
func BuildProperties(a strava.Activity, sport SportType) notion.Properties {
	name := a.Name
	if name == "" {
		name = "Untitled Activity"
	}

	props := notion.Properties{
		notion.PropertyName:      notion.Title(name),
		notion.PropertyStravaID:  notion.Number(float64(a.ID)),
		notion.PropertyType:      notion.Select(string(sport)),
		notion.PropertyDate:      notion.Date(a.StartDate),
		notion.PropertyDistance:  notion.Number(a.Distance / 1000),          // meters to km
		notion.PropertyDuration:  notion.Number(float64(a.MovingTime) / 60), // seconds to minutes
		notion.PropertyElevation: notion.Number(a.TotalElevationGain),
	}

	if a.AverageHeartrate > 0 {
		props[notion.PropertyAverageHR] = notion.Number(a.AverageHeartrate)
	}

	if extract, ok := sportFields[sport]; ok {
		extract(a, props)
	}

	return props
}

func runFields(a strava.Activity, props notion.Properties) {
	if a.AverageSpeed > 0 {
		kmh := a.AverageSpeed * 3.6
		props[notion.PropertyAveragePace] = notion.Number(60 / kmh) // min/km
	}
	if a.AverageCadence > 0 {
		props[notion.PropertyCadence] = notion.Number(a.AverageCadence * 2) // steps/min, Strava reports single-leg
	}
}

func rideFields(a strava.Activity, props notion.Properties) {
	if a.AverageSpeed > 0 {
		props[notion.PropertyAverageSpeed] = notion.Number(a.AverageSpeed * 3.6) // km/h
	}
	if a.AverageWatts > 0 {
		props[notion.PropertyAveragePower] = notion.Number(a.AverageWatts)
	}
}

func swimFields(a strava.Activity, props notion.Properties) {
	if a.AverageSpeed > 0 {
		props[notion.PropertyAveragePace] = notion.Number((100 / a.AverageSpeed) / 60) // min/100m
	}
}
