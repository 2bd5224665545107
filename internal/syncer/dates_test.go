package syncer

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExtractDayName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{name: "plain day", input: "Tuesday 6/4", want: "Tuesday", ok: true},
		{name: "lowercase", input: "session on thursday", want: "Thursday", ok: true},
		{name: "earliest occurrence wins", input: "Friday, moved from Monday", want: "Friday", ok: true},
		{name: "no day", input: "upper body", want: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractDayName(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ExtractDayName(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseSheetAnchorDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{name: "weekly plan format", input: "Weekly Plan (6/2/2025)", want: date(2025, 6, 2), ok: true},
		{name: "week of format", input: "Week of 12/30/2024", want: date(2024, 12, 30), ok: true},
		{name: "bare parenthesized date", input: "Deload (3/10/2025)", want: date(2025, 3, 10), ok: true},
		{name: "no date", input: "Notes", ok: false},
		{name: "impossible date rejected", input: "Weekly Plan (2/30/2025)", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSheetAnchorDate(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseSheetAnchorDate(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseSheetAnchorDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBestYearForMonthDay(t *testing.T) {
	now := date(2025, 6, 15)
	tests := []struct {
		name      string
		anchor    time.Time
		hasAnchor bool
		month     int
		day       int
		want      int
	}{
		{name: "same year is closest", anchor: date(2025, 6, 2), hasAnchor: true, month: 6, day: 5, want: 2025},
		{name: "december anchor january date rolls forward", anchor: date(2024, 12, 30), hasAnchor: true, month: 1, day: 2, want: 2025},
		{name: "january anchor december date rolls back", anchor: date(2025, 1, 5), hasAnchor: true, month: 12, day: 29, want: 2024},
		{name: "no anchor falls back to now", hasAnchor: false, month: 2, day: 1, want: 2025},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BestYearForMonthDay(tt.anchor, tt.hasAnchor, tt.month, tt.day, now)
			if got != tt.want {
				t.Errorf("BestYearForMonthDay() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestInferDateFromAnchor(t *testing.T) {
	// якорь — понедельник 2 июня 2025
	anchor := date(2025, 6, 2)
	tests := []struct {
		name    string
		dayName string
		want    time.Time
		ok      bool
	}{
		{name: "same weekday", dayName: "Monday", want: date(2025, 6, 2), ok: true},
		{name: "tuesday is next day", dayName: "Tuesday", want: date(2025, 6, 3), ok: true},
		{name: "sunday wraps to end of week", dayName: "Sunday", want: date(2025, 6, 8), ok: true},
		{name: "unknown day", dayName: "Someday", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := InferDateFromAnchor(anchor, tt.dayName)
			if ok != tt.ok {
				t.Fatalf("InferDateFromAnchor() ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("InferDateFromAnchor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInferDateFromAnchor_ForwardAlwaysFinds(t *testing.T) {
	// прямой поиск 0..6 покрывает все дни недели с любого якоря
	for offset := 0; offset < 7; offset++ {
		anchor := date(2025, 6, 2).AddDate(0, 0, offset)
		for _, wd := range weekdays {
			got, ok := InferDateFromAnchor(anchor, wd)
			if !ok {
				t.Fatalf("no match for %s from anchor %v", wd, anchor)
			}
			diff := int(got.Sub(anchor).Hours() / 24)
			if diff < 0 || diff > 6 {
				t.Errorf("%s from %v resolved backwards: %v", wd, anchor, got)
			}
		}
	}
}

func TestInferSessionDate(t *testing.T) {
	now := date(2025, 6, 15)
	tests := []struct {
		name      string
		sheetName string
		dayLabel  string
		dayName   string
		fallback  string
		want      string
	}{
		{
			name:      "anchor plus day name",
			sheetName: "Weekly Plan (6/2/2025)",
			dayLabel:  "Tuesday",
			dayName:   "Tuesday",
			fallback:  "2025-01-01",
			want:      "2025-06-03",
		},
		{
			name:      "inline date wins over anchor",
			sheetName: "Weekly Plan (6/2/2025)",
			dayLabel:  "Wednesday 6/4",
			dayName:   "Wednesday",
			fallback:  "2025-01-01",
			want:      "2025-06-04",
		},
		{
			name:      "inline date with two digit year",
			sheetName: "",
			dayLabel:  "Friday 6/6/25",
			dayName:   "Friday",
			fallback:  "2025-01-01",
			want:      "2025-06-06",
		},
		{
			name:      "inline date with full year",
			sheetName: "",
			dayLabel:  "Friday 6/6/2025",
			dayName:   "Friday",
			fallback:  "2025-01-01",
			want:      "2025-06-06",
		},
		{
			name:      "fallback when nothing parses",
			sheetName: "Notes",
			dayLabel:  "upper body",
			dayName:   "",
			fallback:  "2025-06-10",
			want:      "2025-06-10",
		},
		{
			name:      "yearless inline date near december anchor",
			sheetName: "Weekly Plan (12/30/2024)",
			dayLabel:  "Thursday 1/2",
			dayName:   "Thursday",
			fallback:  "2024-01-01",
			want:      "2025-01-02",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inferSessionDateAt(tt.sheetName, tt.dayLabel, tt.dayName, tt.fallback, now)
			if got != tt.want {
				t.Errorf("inferSessionDateAt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCoerceRPE(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		logText  string
		want     float64
		ok       bool
	}{
		{name: "explicit wins", explicit: "8.5", logText: "rpe 9", want: 8.5, ok: true},
		{name: "explicit out of range falls to text", explicit: "11", logText: "Felt strong, rpe: 8.5 today", want: 8.5, ok: true},
		{name: "colon separator", explicit: "", logText: "3x8 @ 60, RPE: 7", want: 7, ok: true},
		{name: "equals separator", explicit: "", logText: "rpe=9.5 grinder", want: 9.5, ok: true},
		{name: "text value out of range rejected", explicit: "", logText: "rpe 15 lol", want: 0, ok: false},
		{name: "no rpe anywhere", explicit: "", logText: "easy session", want: 0, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceRPE(tt.explicit, tt.logText)
			if got != tt.want || ok != tt.ok {
				t.Errorf("CoerceRPE(%q, %q) = %v, %v; want %v, %v", tt.explicit, tt.logText, got, ok, tt.want, tt.ok)
			}
		})
	}
}
