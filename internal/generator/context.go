// Package generator оркестровка генерации недельного плана:
// двухпроходное общение с моделью, сборка контекста из истории,
// директивы прогрессии и ограниченный цикл коррекции.
package generator

import (
	"fmt"
	"strings"

	"fortbot/internal/models"
	"fortbot/internal/names"
)

const (
	// DefaultContextBudget бюджет контекста в символах
	DefaultContextBudget = 3200
	// DefaultLogsPerExercise сколько последних логов брать на упражнение
	DefaultLogsPerExercise = 4
	// DefaultGenericRows сколько строк берёт generic-контекст
	DefaultGenericRows = 40

	truncationMarker = "…(история обрезана)"
	logSnippetLen    = 60
)

// HistorySource ёмкость хранилища, нужная сборщику контекста
type HistorySource interface {
	RecentLogs(limit int) ([]models.LogContextRow, error)
	LogsForExercise(nameKey string, limit int) ([]models.LogContextRow, error)
	LogsSince(dateISO string) ([]models.LogContextRow, error)
}

// BuildTargetedContext прицельный контекст по выбранным упражнениям.
// Имена дедуплицируются по каноническому ключу; строки добавляются,
// пока текст укладывается в бюджет, первая не влезшая строка меняется
// на маркер обрезки. Пустая строка результата означает, что история
// не нашлась ни по одному упражнению — вызывающий уходит в generic
func BuildTargetedContext(src HistorySource, selection map[string][]string, budget, perExercise int) string {
	if budget <= 0 {
		budget = DefaultContextBudget
	}
	if perExercise <= 0 {
		perExercise = DefaultLogsPerExercise
	}

	seen := make(map[string]bool)
	var ordered []string
	display := make(map[string]string)
	for _, day := range []string{"Tuesday", "Thursday", "Saturday"} {
		for _, name := range selection[day] {
			key := names.Key(name)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			ordered = append(ordered, key)
			display[key] = names.Display(name)
		}
	}
	// Дни вне канонического списка тоже учитываем
	for day, list := range selection {
		switch day {
		case "Tuesday", "Thursday", "Saturday":
			continue
		}
		for _, name := range list {
			key := names.Key(name)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			ordered = append(ordered, key)
			display[key] = names.Display(name)
		}
	}

	var sb strings.Builder
	matched := false
	truncated := false

	for _, key := range ordered {
		rows, err := src.LogsForExercise(key, perExercise)
		if err != nil || len(rows) == 0 {
			continue
		}
		matched = true

		lines := []string{"## " + display[key]}
		for _, r := range rows {
			lines = append(lines, formatContextRow(r))
		}
		for _, line := range lines {
			if sb.Len()+len(line)+1 > budget {
				sb.WriteString(truncationMarker)
				truncated = true
				break
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		if truncated {
			break
		}
	}

	if !matched {
		return ""
	}
	return strings.TrimRight(sb.String(), "\n")
}

// BuildGenericContext запасной контекст: просто последние maxRows
// строк истории, при превышении бюджета — жёсткая обрезка без маркера
func BuildGenericContext(src HistorySource, maxRows, maxChars int) string {
	if maxRows <= 0 {
		maxRows = DefaultGenericRows
	}
	if maxChars <= 0 {
		maxChars = DefaultContextBudget
	}

	rows, err := src.RecentLogs(maxRows)
	if err != nil || len(rows) == 0 {
		return ""
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, formatContextRow(r))
	}
	joined := strings.Join(lines, "\n")
	if len(joined) > maxChars {
		joined = joined[:maxChars]
	}
	return joined
}

// formatContextRow строка истории вида
// "date|day: SxR @Load [обрезанный лог | RPE n]"
func formatContextRow(r models.LogContextRow) string {
	base := fmt.Sprintf("%s|%s: %sx%s @%s", r.Date, r.Day, r.Sets, r.Reps, r.Load)

	var extras []string
	if log := strings.TrimSpace(r.Log); log != "" {
		extras = append(extras, snippet(log, logSnippetLen))
	}
	if r.RPE > 0 {
		extras = append(extras, fmt.Sprintf("RPE %g", r.RPE))
	}
	if len(extras) > 0 {
		base += " [" + strings.Join(extras, " | ") + "]"
	}
	return base
}

func snippet(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
