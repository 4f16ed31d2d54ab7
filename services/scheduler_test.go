package services

import (
	"strings"
	"testing"
	"time"
)

func TestReminderMessageTiers(t *testing.T) {
	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		nextWatering time.Time
		wantSubject  string
		wantInText   string
	}{
		{
			name:         "overdue",
			nextWatering: now.AddDate(0, 0, -3),
			wantSubject:  "URGENT: Monstera needs water!",
			wantInText:   "3 days overdue",
		},
		{
			name:         "due today",
			nextWatering: now,
			wantSubject:  "Reminder: Water your Monstera today",
			wantInText:   "Today is the day",
		},
		{
			name:         "upcoming",
			nextWatering: now.Add(30 * time.Hour),
			wantSubject:  "Upcoming: Monstera needs water soon",
			wantInText:   "in 2 days",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			subject, text := reminderMessage("Monstera", tc.nextWatering, now)
			if subject != tc.wantSubject {
				t.Errorf("subject = %q, want %q", subject, tc.wantSubject)
			}
			if !strings.Contains(text, tc.wantInText) {
				t.Errorf("text = %q, want it to contain %q", text, tc.wantInText)
			}
		})
	}
}

func TestNextRun(t *testing.T) {
	loc := time.UTC

	before := time.Date(2025, time.June, 10, 7, 30, 0, 0, loc)
	if got := nextRun(before, 9); !got.Equal(time.Date(2025, time.June, 10, 9, 0, 0, 0, loc)) {
		t.Errorf("nextRun before the hour = %v, want same-day 09:00", got)
	}

	after := time.Date(2025, time.June, 10, 9, 0, 1, 0, loc)
	if got := nextRun(after, 9); !got.Equal(time.Date(2025, time.June, 11, 9, 0, 0, 0, loc)) {
		t.Errorf("nextRun after the hour = %v, want next-day 09:00", got)
	}

	exactly := time.Date(2025, time.June, 10, 9, 0, 0, 0, loc)
	if got := nextRun(exactly, 9); !got.Equal(time.Date(2025, time.June, 11, 9, 0, 0, 0, loc)) {
		t.Errorf("nextRun at the hour = %v, want next-day 09:00", got)
	}
}
