package generator

import (
	"fmt"
	"regexp"
	"strings"

	"fortbot/internal/models"
)

// maxViolationsInPrompt сколько нарушений перечислять в коррекции
const maxViolationsInPrompt = 20

// SystemPrompt системный промпт генерации плана
const SystemPrompt = `You are a strength coach writing a weekly training plan.

Output format, strictly:
- Each day starts with a "## <Day>" header.
- Each exercise is a "### <Block>. <Name>" header (blocks like A1, B2),
  followed by a prescription line "- <sets> x <reps> @ <load> kg",
  then optional "- **Rest:** ..." and "- **Notes:** ..." lines.

Hard rules:
- Never output numeric ranges like 8-12: pick one value.
- Dumbbell accessory loads must be even whole kilograms.
- No barbell main lifts (squat, bench, deadlift, overhead press,
  barbell row) on Tuesday, Thursday or Saturday.
- Reproduce the Fort days (Monday, Wednesday, Friday) exactly as given:
  same exercises, same order.
- Output the plan only, no commentary before the first header.`

// BuildPass1Prompt дешёвый первый проход: только названия упражнений
// на дополнительные дни
func BuildPass1Prompt(fortRaw string) string {
	var sb strings.Builder
	sb.WriteString("Given the fixed Fort days below, pick exercises for the supplemental days.\n")
	sb.WriteString("Answer with exactly three lines, nothing else:\n")
	sb.WriteString("Tuesday: <name>, <name>, ...\n")
	sb.WriteString("Thursday: <name>, <name>, ...\n")
	sb.WriteString("Saturday: <name>, <name>, ...\n\n")
	sb.WriteString("Fort days:\n\n")
	sb.WriteString(fortRaw)
	return sb.String()
}

// BuildGenerationPrompt основной промпт генерации
func BuildGenerationPrompt(fortRaw string, directives []models.ProgressionDirective, historyContext string) string {
	var sb strings.Builder
	sb.WriteString("Write the full weekly plan: Monday through Saturday.\n\n")
	sb.WriteString("## Fort days (reproduce verbatim)\n\n")
	sb.WriteString(fortRaw)
	sb.WriteString("\n")

	if locked := lockedDirectiveLines(directives); len(locked) > 0 {
		sb.WriteString("\n## Locked prescriptions (use exactly these values)\n\n")
		for _, line := range locked {
			sb.WriteString(line + "\n")
		}
	}

	if historyContext != "" {
		sb.WriteString("\n## Recent training history\n\n")
		sb.WriteString(historyContext)
		sb.WriteString("\n")
	}
	return sb.String()
}

// BuildCorrectionPrompt промпт исправления: до 20 нарушений, Fort-
// контекст и сводка верности
func BuildCorrectionPrompt(planText string, violations []models.Violation, fortRaw, fidelitySummary string) string {
	var sb strings.Builder
	sb.WriteString("The plan below violates hard rules. Return the corrected FULL plan, same format, no commentary.\n\n")

	sb.WriteString("## Violations\n\n")
	n := len(violations)
	if n > maxViolationsInPrompt {
		n = maxViolationsInPrompt
	}
	for _, v := range violations[:n] {
		sb.WriteString(fmt.Sprintf("- [%s] %s\n", v.Code(), v.Message()))
	}
	if len(violations) > n {
		sb.WriteString(fmt.Sprintf("- ... и ещё %d\n", len(violations)-n))
	}

	sb.WriteString("\n## Fort days (must be reproduced verbatim)\n\n")
	sb.WriteString(fortRaw)
	sb.WriteString("\n\n## Fidelity check\n\n")
	sb.WriteString(fidelitySummary)
	sb.WriteString("\n\n## Current plan\n\n")
	sb.WriteString(planText)
	return sb.String()
}

var selectionLineRe = regexp.MustCompile(`^\s*([A-Za-z]+)\s*:\s*(.+)$`)

// ParseSelection построчный разбор ответа первого прохода: строки
// вида "День: упр, упр". Все ожидаемые дни обязаны распарситься
// непусто, иначе весь проход считается провалившимся и возвращается
// nil — частичного зачёта нет
func ParseSelection(response string, expected []string) map[string][]string {
	out := make(map[string][]string)
	for _, line := range strings.Split(response, "\n") {
		m := selectionLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		day := matchExpectedDay(m[1], expected)
		if day == "" {
			continue
		}
		var list []string
		for _, part := range strings.Split(m[2], ",") {
			if name := strings.TrimSpace(part); name != "" {
				list = append(list, name)
			}
		}
		if len(list) > 0 {
			out[day] = list
		}
	}

	for _, day := range expected {
		if len(out[day]) == 0 {
			return nil
		}
	}
	return out
}

func matchExpectedDay(token string, expected []string) string {
	for _, day := range expected {
		if strings.EqualFold(token, day) {
			return day
		}
	}
	return ""
}

// StripPreamble срезает рассуждения модели до первого заголовка
// "# " или "## "; без заголовков текст остаётся как есть
func StripPreamble(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") || strings.HasPrefix(trimmed, "## ") {
			return strings.Join(lines[i:], "\n")
		}
	}
	return text
}

// lockedDirectiveLines строки залоченных директив для промпта
func lockedDirectiveLines(directives []models.ProgressionDirective) []string {
	var out []string
	for _, d := range directives {
		if !d.Locked() || d.LockedSets == "" {
			continue
		}
		out = append(out, fmt.Sprintf("- %s (%s): %s x %s @ %s kg",
			d.Exercise, d.Day, d.LockedSets, d.LockedReps, d.LockedLoad))
	}
	return out
}
