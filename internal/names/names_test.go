package names

import "testing"

func TestKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercase passthrough", input: "bench press", want: "bench press"},
		{name: "uppercase and punctuation", input: "  Pull-Up! ", want: "pull up"},
		{name: "collapsed whitespace", input: "DB   Row", want: "db row"},
		{name: "digits survive", input: "21s Curl", want: "21s curl"},
		{name: "empty", input: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.input); got != tt.want {
				t.Errorf("Key(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "alias to canonical", input: "rdl", want: "Romanian Deadlift"},
		{name: "case insensitive lookup", input: "BENCH PRESS", want: "Bench Press"},
		{name: "dumbbell long form", input: "Dumbbell Row", want: "DB Row"},
		{name: "unknown stays as is", input: "Zercher Carry", want: "Zercher Carry"},
		{name: "unknown trimmed", input: "  Sled Push  ", want: "Sled Push"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Display(tt.input); got != tt.want {
				t.Errorf("Display(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsDumbbell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "db token", input: "DB Row", want: true},
		{name: "dumbbell word", input: "Dumbbell Lateral Raise", want: true},
		{name: "goblet counts", input: "Goblet Squat", want: true},
		{name: "db inside word does not count", input: "Deadbug Hold", want: false},
		{name: "barbell lift", input: "Bench Press", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDumbbell(tt.input); got != tt.want {
				t.Errorf("IsDumbbell(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsMainLift(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "back squat", input: "Back Squat", want: true},
		{name: "deadlift", input: "deadlift", want: true},
		{name: "romanian deadlift", input: "Romanian Deadlift", want: true},
		{name: "accessory", input: "Lat Pulldown", want: false},
		{name: "db variant is not main", input: "DB Bench Press", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMainLift(tt.input); got != tt.want {
				t.Errorf("IsMainLift(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSame(t *testing.T) {
	if !Same("Pull-Up", "pull up ") || Same("Bench Press", "DB Bench Press") {
		t.Error("Same() canonical comparison broken")
	}
}

func TestAliasedKey(t *testing.T) {
	aliases := map[string]string{
		"Hip Hinge":       "RDL",
		"Hip Hinge Squat": "Goblet Squat",
	}
	tests := []struct {
		name    string
		input   string
		aliases map[string]string
		want    string
	}{
		{name: "no aliases", input: "Bench Press", aliases: nil, want: "bench press"},
		{name: "whole name", input: "hip hinge", aliases: aliases, want: "rdl"},
		{name: "substring inside longer name", input: "Barbell Hip Hinge", aliases: aliases, want: "barbell rdl"},
		{name: "longest key wins", input: "Hip Hinge Squat", aliases: aliases, want: "goblet squat"},
		{name: "no match passes through", input: "Lat Pulldown", aliases: aliases, want: "lat pulldown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AliasedKey(tt.input, tt.aliases); got != tt.want {
				t.Errorf("AliasedKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
