package syncer

import (
	"testing"
	"time"
)

func TestPickCandidate(t *testing.T) {
	ref := date(2025, 6, 10)
	cands := []Candidate{
		{Name: "Weekly Plan (5/5/2025)", Date: date(2025, 5, 5)},
		{Name: "Weekly Plan (6/2/2025)", Date: date(2025, 6, 2)},
		{Name: "Weekly Plan (6/9/2025)", Date: date(2025, 6, 9)},
		{Name: "Weekly Plan (6/16/2025)", Date: date(2025, 6, 16)},
	}

	got, ok := PickCandidate(cands, ref, DefaultNearWindowDays, true)
	if !ok || got.Name != "Weekly Plan (6/9/2025)" {
		t.Errorf("PickCandidate() = %q, %v; want closest sheet", got.Name, ok)
	}
}

func TestPickCandidate_TiePrefersFuture(t *testing.T) {
	ref := date(2025, 6, 11)
	cands := []Candidate{
		{Name: "past", Date: date(2025, 6, 9)},
		{Name: "future", Date: date(2025, 6, 13)},
	}
	got, ok := PickCandidate(cands, ref, DefaultNearWindowDays, true)
	if !ok || got.Name != "future" {
		t.Errorf("PickCandidate() = %q, want %q on a tie", got.Name, "future")
	}
}

func TestPickCandidate_OutsideWindow(t *testing.T) {
	ref := date(2025, 6, 10)
	cands := []Candidate{
		{Name: "old", Date: date(2024, 1, 8)},
		{Name: "older", Date: date(2023, 5, 1)},
	}

	got, ok := PickCandidate(cands, ref, DefaultNearWindowDays, true)
	if !ok || got.Name != "old" {
		t.Errorf("fallback = %q, %v; want most recent", got.Name, ok)
	}

	if _, ok := PickCandidate(cands, ref, DefaultNearWindowDays, false); ok {
		t.Error("fallback disabled must return no candidate")
	}
}

func TestPickCandidate_Empty(t *testing.T) {
	if _, ok := PickCandidate(nil, time.Now(), 0, true); ok {
		t.Error("empty candidate list must return no candidate")
	}
}

func TestSanitizeReferenceDate(t *testing.T) {
	now := date(2025, 6, 10)
	tests := []struct {
		name         string
		ref          time.Time
		wantReplaced bool
	}{
		{name: "current year kept", ref: date(2025, 1, 1), wantReplaced: false},
		{name: "two years off kept", ref: date(2023, 6, 10), wantReplaced: false},
		{name: "far past replaced", ref: date(1970, 1, 1), wantReplaced: true},
		{name: "far future replaced", ref: date(2099, 1, 1), wantReplaced: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, replaced := SanitizeReferenceDate(tt.ref, now)
			if replaced != tt.wantReplaced {
				t.Fatalf("replaced = %v, want %v", replaced, tt.wantReplaced)
			}
			if replaced && !got.Equal(now) {
				t.Errorf("replaced date = %v, want now", got)
			}
			if !replaced && !got.Equal(tt.ref) {
				t.Errorf("kept date = %v, want original", got)
			}
		})
	}
}

func TestWeeklySheetName(t *testing.T) {
	tests := []struct {
		name string
		ref  time.Time
		want string
	}{
		{name: "monday stays", ref: date(2025, 6, 2), want: "Weekly Plan (6/2/2025)"},
		{name: "midweek backs up to monday", ref: date(2025, 6, 4), want: "Weekly Plan (6/2/2025)"},
		{name: "saturday rolls to next week", ref: date(2025, 6, 7), want: "Weekly Plan (6/9/2025)"},
		{name: "sunday rolls to next week", ref: date(2025, 6, 8), want: "Weekly Plan (6/9/2025)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeeklySheetName(tt.ref); got != tt.want {
				t.Errorf("WeeklySheetName(%v) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}
