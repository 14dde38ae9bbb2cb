package task

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the length of the 24-hour clock in minutes.
const MinutesPerDay = 24 * 60

// TimeToMinutes converts "HH:MM" to minutes since midnight.
// Returns 0 for malformed input instead of failing, so a broken stored
// value behaves like "00:00" in arithmetic.
func TimeToMinutes(t string) int {
	hours, mins, ok := strings.Cut(t, ":")
	if !ok || strings.Contains(mins, ":") {
		return 0
	}
	h, err := parseDigits(hours)
	if err != nil {
		return 0
	}
	m, err := parseDigits(mins)
	if err != nil {
		return 0
	}
	return h*60 + m
}

func parseDigits(s string) (int, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

// MinutesToTime converts minutes to "HH:MM", wrapping around midnight in
// both directions (-10 is "23:50", 1460 is "00:20").
func MinutesToTime(m int) string {
	m = ((m % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// AddMinutes adds a signed number of minutes to an "HH:MM" time of day.
func AddMinutes(t string, delta int) string {
	return MinutesToTime(TimeToMinutes(t) + delta)
}

// OverlapMinutes calculates the overlapping minutes between two time ranges.
// All times are in "HH:MM" format.
// Returns 0 if there is no overlap.
func OverlapMinutes(start1, end1, start2, end2 string) int {
	s1 := TimeToMinutes(start1)
	e1 := TimeToMinutes(end1)
	s2 := TimeToMinutes(start2)
	e2 := TimeToMinutes(end2)

	overlapStart := max(s1, s2)
	overlapEnd := min(e1, e2)

	if overlapEnd <= overlapStart {
		return 0
	}
	return overlapEnd - overlapStart
}

// TimesOverlap returns true if two time ranges overlap.
// Two time ranges overlap if: start1 < end2 AND start2 < end1
// Ranges are half-open, so touching endpoints do not overlap. Both ranges
// must lie within one day (start before end).
func TimesOverlap(start1, end1, start2, end2 string) bool {
	return start1 < end2 && start2 < end1
}
