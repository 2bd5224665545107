// Package validate два независимых проверяющих прохода: жёсткие
// правила плана и верность скомпилированным Fort-метаданным.
// Оба прохода только читают план и каждый раз создают нарушения заново.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"fortbot/internal/models"
	"fortbot/internal/names"
	"fortbot/internal/plan"
)

var rangeRe = regexp.MustCompile(`\d+(?:\.\d+)?\s*[-–]\s*\d+(?:\.\d+)?`)

// supplementalDays дни с запретом на основные движения со штангой
// (защита от интерференции с Fort-днями)
var supplementalDays = []string{"Tuesday", "Thursday", "Saturday"}

// PlanResult результат проверки правил плана
type PlanResult struct {
	Violations []models.Violation
	Summary    string
}

// FidelityResult результат проверки верности Fort-дням
type FidelityResult struct {
	Violations []models.Violation
	Summary    string
}

// ValidatePlan проверяет глобальные жёсткие правила: диапазоны
// схлопнуты, залоченные директивы соблюдены, запреты по оборудованию
// и структуре держатся
func ValidatePlan(text string, directives []models.ProgressionDirective) PlanResult {
	doc := plan.Parse(text)
	var violations []models.Violation

	for _, day := range doc.Days {
		if len(day.Exercises) == 0 {
			violations = append(violations, models.PlanViolation{
				RuleCode: "empty_day",
				DayLabel: day.Label,
				Text:     fmt.Sprintf("день %q без упражнений", day.Label),
			})
		}
		for _, e := range day.Exercises {
			violations = append(violations, checkEntry(day.Label, e)...)
		}
	}

	violations = append(violations, checkDirectives(doc, directives)...)

	return PlanResult{
		Violations: violations,
		Summary:    summary("проверка правил плана", len(violations)),
	}
}

// checkEntry правила одного упражнения
func checkEntry(dayLabel string, e models.ExerciseEntry) []models.Violation {
	var out []models.Violation

	for _, field := range []string{e.Sets, e.Reps, e.Load} {
		if rangeRe.MatchString(field) {
			out = append(out, models.PlanViolation{
				RuleCode:     "range_left",
				DayLabel:     dayLabel,
				ExerciseName: e.Name,
				Text:         fmt.Sprintf("%s: остался числовой диапазон %q", e.Name, field),
			})
		}
	}

	if isSupplemental(dayLabel) && names.IsMainLift(e.Name) {
		out = append(out, models.PlanViolation{
			RuleCode:     "interference",
			DayLabel:     dayLabel,
			ExerciseName: e.Name,
			Text:         fmt.Sprintf("%s: основное движение со штангой в дополнительный день %q", e.Name, dayLabel),
		})
	}

	if names.IsDumbbell(e.Name) && !names.IsMainLift(e.Name) {
		if n, err := strconv.ParseFloat(e.Load, 64); err == nil {
			if n != float64(int(n)) || int(n)%2 != 0 {
				out = append(out, models.PlanViolation{
					RuleCode:     "odd_db_load",
					DayLabel:     dayLabel,
					ExerciseName: e.Name,
					Text:         fmt.Sprintf("%s: нагрузка гантелей %s kg не чётная", e.Name, e.Load),
				})
			}
		}
	}

	return out
}

// checkDirectives сверяет план с залоченными директивами
func checkDirectives(doc *models.PlanDocument, directives []models.ProgressionDirective) []models.Violation {
	var out []models.Violation
	for _, d := range directives {
		if !d.Locked() || d.LockedSets == "" {
			continue
		}
		entry, found := findEntry(doc, d.Day, d.Exercise)
		if !found {
			out = append(out, models.PlanViolation{
				RuleCode:     "lock_missing",
				DayLabel:     d.Day,
				ExerciseName: d.Exercise,
				Text:         fmt.Sprintf("%s: упражнение с залоченной директивой отсутствует в дне %q", d.Exercise, d.Day),
			})
			continue
		}
		if entry.Sets != d.LockedSets || entry.Reps != d.LockedReps || entry.Load != d.LockedLoad {
			out = append(out, models.PlanViolation{
				RuleCode:     "lock_ignored",
				DayLabel:     d.Day,
				ExerciseName: d.Exercise,
				Text: fmt.Sprintf("%s: предписание %sx%s@%s вместо залоченного %sx%s@%s",
					d.Exercise, entry.Sets, entry.Reps, entry.Load, d.LockedSets, d.LockedReps, d.LockedLoad),
			})
		}
	}
	return out
}

// ValidateFortFidelity проверяет, что каждый якорь встречается в
// своём дне хотя бы раз и порядок секций совпадает с метаданными
func ValidateFortFidelity(text string, meta *models.FortMeta, aliases map[string]string) FidelityResult {
	if meta == nil || len(meta.SectionOrder) == 0 {
		return FidelityResult{Summary: summary("проверка Fort-верности", 0)}
	}

	doc := plan.Parse(text)
	var violations []models.Violation

	for _, day := range meta.SectionOrder {
		for _, anchor := range meta.Anchors[day] {
			if !anchorInDay(doc, day, anchor.Name, aliases) {
				violations = append(violations, models.FortFidelityViolation{
					RuleCode:     "anchor_missing",
					DayLabel:     day,
					ExerciseName: anchor.Name,
					Text:         fmt.Sprintf("якорь %q отсутствует в дне %s", anchor.Name, day),
				})
			}
		}
	}

	violations = append(violations, checkSectionOrder(doc, meta)...)

	return FidelityResult{
		Violations: violations,
		Summary:    summary("проверка Fort-верности", len(violations)),
	}
}

// anchorInDay поиск якоря в дне с учётом алиасов
func anchorInDay(doc *models.PlanDocument, day, anchorName string, aliases map[string]string) bool {
	want := names.AliasedKey(anchorName, aliases)
	for _, d := range doc.Days {
		if !strings.Contains(strings.ToLower(d.Label), strings.ToLower(day)) {
			continue
		}
		for _, e := range d.Exercises {
			if names.AliasedKey(e.Name, aliases) == want {
				return true
			}
		}
	}
	return false
}

// checkSectionOrder сверяет относительный порядок Fort-секций
func checkSectionOrder(doc *models.PlanDocument, meta *models.FortMeta) []models.Violation {
	positions := make([]int, 0, len(meta.SectionOrder))
	present := make([]string, 0, len(meta.SectionOrder))
	for _, day := range meta.SectionOrder {
		for i, d := range doc.Days {
			if strings.Contains(strings.ToLower(d.Label), strings.ToLower(day)) {
				positions = append(positions, i)
				present = append(present, day)
				break
			}
		}
	}

	var out []models.Violation
	for i := 1; i < len(positions); i++ {
		if positions[i] < positions[i-1] {
			out = append(out, models.FortFidelityViolation{
				RuleCode: "section_order",
				DayLabel: present[i],
				Text:     fmt.Sprintf("секция %s стоит раньше %s, порядок Fort-дней нарушен", present[i], present[i-1]),
			})
		}
	}
	return out
}

// summary короткая сводка; выдаётся всегда, даже без нарушений
func summary(what string, n int) string {
	if n == 0 {
		return what + ": пройдена"
	}
	return fmt.Sprintf("%s: %d нарушений", what, n)
}

func isSupplemental(dayLabel string) bool {
	low := strings.ToLower(dayLabel)
	for _, d := range supplementalDays {
		if strings.Contains(low, strings.ToLower(d)) {
			return true
		}
	}
	return false
}

// findEntry ищет упражнение по дню и каноническому ключу
func findEntry(doc *models.PlanDocument, day, exercise string) (models.ExerciseEntry, bool) {
	for _, d := range doc.Days {
		if day != "" && !strings.Contains(strings.ToLower(d.Label), strings.ToLower(day)) {
			continue
		}
		for _, e := range d.Exercises {
			if names.Same(e.Name, exercise) {
				return e, true
			}
		}
	}
	return models.ExerciseEntry{}, false
}
