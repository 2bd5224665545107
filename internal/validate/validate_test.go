package validate

import (
	"strings"
	"testing"

	"fortbot/internal/fort"
	"fortbot/internal/models"
)

func codes(violations []models.Violation) []string {
	out := make([]string, 0, len(violations))
	for _, v := range violations {
		out = append(out, v.Code())
	}
	return out
}

func hasCode(violations []models.Violation, code string) bool {
	for _, v := range violations {
		if v.Code() == code {
			return true
		}
	}
	return false
}

func TestValidatePlan_Rules(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode string
	}{
		{
			name:     "empty day",
			input:    "## Wednesday\n\n## Monday\n### A1. Bench Press\n- 3 x 5 @ 60 kg",
			wantCode: "empty_day",
		},
		{
			name:     "range survived repair",
			input:    "## Monday\n### A1. Bench Press\n- 3 x 8-12 @ 60 kg",
			wantCode: "range_left",
		},
		{
			name:     "main lift on supplemental day",
			input:    "## Tuesday\n### A1. Back Squat\n- 3 x 5 @ 100 kg",
			wantCode: "interference",
		},
		{
			name:     "odd dumbbell load",
			input:    "## Tuesday\n### A1. DB Row\n- 3 x 10 @ 21 kg",
			wantCode: "odd_db_load",
		},
		{
			name:     "fractional dumbbell load",
			input:    "## Tuesday\n### A1. DB Row\n- 3 x 10 @ 22.5 kg",
			wantCode: "odd_db_load",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidatePlan(tt.input, nil)
			if !hasCode(res.Violations, tt.wantCode) {
				t.Errorf("ValidatePlan() codes = %v, want %q", codes(res.Violations), tt.wantCode)
			}
		})
	}
}

func TestValidatePlan_Clean(t *testing.T) {
	input := "## Monday\n### A1. Back Squat\n- 5 x 5 @ 100 kg\n\n## Tuesday\n### A1. DB Row\n- 3 x 10 @ 24 kg\n### A2. Plank\n- 3 x 45 @ bodyweight"
	res := ValidatePlan(input, nil)
	if len(res.Violations) != 0 {
		t.Errorf("clean plan flagged: %v", codes(res.Violations))
	}
	if res.Summary != "проверка правил плана: пройдена" {
		t.Errorf("summary = %q", res.Summary)
	}
}

func TestValidatePlan_Directives(t *testing.T) {
	directives := []models.ProgressionDirective{
		{
			Exercise:   "Bench Press",
			Day:        "Monday",
			Kind:       models.DirectiveHoldLock,
			LockedSets: "3",
			LockedReps: "5",
			LockedLoad: "60",
		},
	}

	tests := []struct {
		name     string
		input    string
		wantCode string
	}{
		{
			name:     "lock respected",
			input:    "## Monday\n### A1. Bench Press\n- 3 x 5 @ 60 kg",
			wantCode: "",
		},
		{
			name:     "lock ignored",
			input:    "## Monday\n### A1. Bench Press\n- 3 x 8 @ 65 kg",
			wantCode: "lock_ignored",
		},
		{
			name:     "locked exercise missing",
			input:    "## Monday\n### A1. Back Squat\n- 5 x 5 @ 100 kg",
			wantCode: "lock_missing",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidatePlan(tt.input, directives)
			if tt.wantCode == "" {
				if len(res.Violations) != 0 {
					t.Errorf("unexpected violations: %v", codes(res.Violations))
				}
				return
			}
			if !hasCode(res.Violations, tt.wantCode) {
				t.Errorf("codes = %v, want %q", codes(res.Violations), tt.wantCode)
			}
		})
	}
}

func TestValidateFortFidelity(t *testing.T) {
	meta := fort.Compile(
		"### A1. Back Squat\n- 5 x 5 @ 100 kg",
		"### A1. Bench Press\n- 3 x 5 @ 60 kg",
		"",
	)

	tests := []struct {
		name     string
		input    string
		wantCode string
	}{
		{
			name:     "faithful plan",
			input:    "## Monday\n### A1. Back Squat\n- 5 x 5 @ 100 kg\n\n## Wednesday\n### A1. Bench Press\n- 3 x 5 @ 60 kg",
			wantCode: "",
		},
		{
			name:     "anchor dropped",
			input:    "## Monday\n### A1. Front Squat\n- 5 x 5 @ 80 kg\n\n## Wednesday\n### A1. Bench Press\n- 3 x 5 @ 60 kg",
			wantCode: "anchor_missing",
		},
		{
			name:     "sections out of order",
			input:    "## Wednesday\n### A1. Bench Press\n- 3 x 5 @ 60 kg\n\n## Monday\n### A1. Back Squat\n- 5 x 5 @ 100 kg",
			wantCode: "section_order",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateFortFidelity(tt.input, meta, nil)
			if tt.wantCode == "" {
				if len(res.Violations) != 0 {
					t.Errorf("unexpected violations: %v", codes(res.Violations))
				}
				if !strings.HasSuffix(res.Summary, "пройдена") {
					t.Errorf("summary = %q", res.Summary)
				}
				return
			}
			if !hasCode(res.Violations, tt.wantCode) {
				t.Errorf("codes = %v, want %q", codes(res.Violations), tt.wantCode)
			}
		})
	}
}

func TestValidateFortFidelity_EmptyMeta(t *testing.T) {
	res := ValidateFortFidelity("## Monday\n### A1. Back Squat\n- 5 x 5 @ 100 kg", nil, nil)
	if len(res.Violations) != 0 || res.Summary == "" {
		t.Errorf("empty meta must pass with a summary: %+v", res)
	}
}

func TestValidateFortFidelity_Aliases(t *testing.T) {
	meta := fort.Compile("### A1. Hip Hinge\n- 3 x 8 @ 80 kg", "", "")
	aliases := map[string]string{"Hip Hinge": "Romanian Deadlift"}

	input := "## Monday\n### A1. Romanian Deadlift\n- 3 x 8 @ 80 kg"
	res := ValidateFortFidelity(input, meta, aliases)
	if len(res.Violations) != 0 {
		t.Errorf("aliased anchor flagged: %v", codes(res.Violations))
	}
}

func TestValidateFortFidelity_SubstringAlias(t *testing.T) {
	// Ключ алиаса — подстрока названия якоря; после прохода починки
	// в плане стоит "Barbell RDL", и проверка должна его принять
	meta := fort.Compile("### A1. Barbell Hip Hinge\n- 3 x 8 @ 80 kg", "", "")
	aliases := map[string]string{"Hip Hinge": "RDL"}

	input := "## Monday\n### A1. Barbell RDL\n- 3 x 8 @ 80 kg"
	res := ValidateFortFidelity(input, meta, aliases)
	if len(res.Violations) != 0 {
		t.Errorf("substring-aliased anchor flagged: %v", codes(res.Violations))
	}
}
