package services

import "time"

// streakWindowDays bounds how far back session days are loaded when a streak
// is computed. A streak longer than this is reported as the window size.
const streakWindowDays = 60

// computeStreak counts consecutive study days ending today or yesterday.
// "days" must hold distinct midnight-truncated UTC days in descending order.
// A user who studied yesterday but not yet today keeps the streak alive;
// any older gap breaks it.
func computeStreak(days []time.Time, now time.Time) int {
	if len(days) == 0 {
		return 0
	}

	today := now.Truncate(24 * time.Hour)
	expected := today
	if !days[0].Equal(today) {
		expected = today.AddDate(0, 0, -1)
		if !days[0].Equal(expected) {
			return 0
		}
	}

	streak := 0
	for _, day := range days {
		if !day.Equal(expected) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}
	return streak
}
