package engine

import "math"

// Mastery decay:
//   - A card at level p survives 2^p days without review before decaying.
//   - Past the grace period, each lower level L consumes 2^L days of the
//     overrun and costs one point; the walk stops at the first level the
//     remaining overrun cannot cover.
//   - Decay is recomputed on every read and never written back.

// SecondsPerDay is the unit used to turn stored timestamps into elapsed days.
const SecondsPerDay = 86400

// DefaultMaxPoints is the mastery cap.
const DefaultMaxPoints = 10

// gracePeriod returns 2^points days.
func gracePeriod(points int) float64 {
	return math.Ldexp(1, points)
}

// DecayPoints returns the mastery level of a card at originalPoints after
// daysSinceLastReview days without review. The result is in
// [0, originalPoints] and non-increasing in daysSinceLastReview.
func DecayPoints(originalPoints int, daysSinceLastReview float64) int {
	if originalPoints < 0 {
		originalPoints = 0
	}
	if daysSinceLastReview < 0 || math.IsNaN(daysSinceLastReview) {
		daysSinceLastReview = 0
	}

	remaining := daysSinceLastReview - gracePeriod(originalPoints)
	if remaining <= 0 {
		return originalPoints
	}

	lost := 0
	for level := originalPoints - 1; level >= 0; level-- {
		step := gracePeriod(level)
		if remaining < step {
			break
		}
		lost++
		remaining -= step
	}

	if lost > originalPoints {
		return 0
	}
	return originalPoints - lost
}

// IsDueForStudy reports whether a card at points is due once
// planningOffsetDays more days have passed. An offset of 0 asks about now.
func IsDueForStudy(points int, daysSinceLastReview, planningOffsetDays float64) bool {
	if points < 0 {
		points = 0
	}
	if daysSinceLastReview < 0 || math.IsNaN(daysSinceLastReview) {
		daysSinceLastReview = 0
	}
	if planningOffsetDays < 0 || math.IsNaN(planningOffsetDays) {
		planningOffsetDays = 0
	}
	return daysSinceLastReview+planningOffsetDays >= gracePeriod(points)
}

// DaysSince converts two unix-second timestamps into elapsed days.
// Clock skew (now before last) yields 0.
func DaysSince(last, now int64) float64 {
	if now <= last {
		return 0
	}
	return float64(now-last) / SecondsPerDay
}
