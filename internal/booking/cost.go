package booking

import "math/rand"

// Cost model constants. Estimated cost is quoted at booking time from a
// flat base; actual cost is billed per flight minute on completion. Every
// piece of required equipment adds a fixed surcharge to both.
const (
	baseEstimate     = 5000.0
	baseRatePerMin   = 100.0
	equipmentCharge  = 500.0
	minFlightMinutes = 30
	maxFlightMinutes = 180
)

// UrgencyMultiplier returns the cost multiplier for a booking urgency.
// Unrecognized urgency values degrade to the stable multiplier rather
// than failing.
func UrgencyMultiplier(urgency string) float64 {
	switch urgency {
	case "critical":
		return 1.5
	case "urgent":
		return 1.2
	default:
		return 1.0
	}
}

// EstimatedCost computes the predicted transport cost quoted when a
// booking is created.
func EstimatedCost(urgency string, equipmentCount int) float64 {
	return baseEstimate*UrgencyMultiplier(urgency) + float64(equipmentCount)*equipmentCharge
}

// ActualCost computes the final transport cost from the realized flight
// duration in minutes.
func ActualCost(urgency string, equipmentCount, flightMinutes int) float64 {
	return baseRatePerMin*float64(flightMinutes)*UrgencyMultiplier(urgency) +
		float64(equipmentCount)*equipmentCharge
}

// DurationEstimator supplies a flight duration, in minutes, for bookings
// completed without one. It stands in for a flight-tracking integration;
// the default implementation is randomized, so completion without an
// explicit duration is deliberately non-deterministic.
type DurationEstimator interface {
	EstimateFlightDuration() int
}

// RandomDuration is the placeholder DurationEstimator: a uniformly random
// duration in [30,180] minutes.
type RandomDuration struct{}

func (RandomDuration) EstimateFlightDuration() int {
	return minFlightMinutes + rand.Intn(maxFlightMinutes-minFlightMinutes+1)
}
