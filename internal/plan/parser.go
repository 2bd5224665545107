// Package plan парсинг markdown-плана в структуру и сериализация
// обратно в markdown и в строки листа фиксированной схемы.
package plan

import (
	"regexp"
	"strings"

	"fortbot/internal/models"
)

var (
	dayRe          = regexp.MustCompile(`^##\s+(.+)$`)
	exerciseRe     = regexp.MustCompile(`^###\s+([A-Z]\d+)\.\s+(.+)$`)
	prescriptionRe = regexp.MustCompile(`(?i)^-\s*(\d+)\s*x\s*(.+?)\s*@\s*(.+)$`)
	restRe         = regexp.MustCompile(`^-\s*\*\*Rest:\*\*\s*(.*)$`)
	notesRe        = regexp.MustCompile(`^-\s*\*\*Notes:\*\*\s*(.*)$`)
	unitWordRe     = regexp.MustCompile(`(?i)\b(?:reps?|seconds?|secs?|minutes?|mins?|meters?|miles?)\b`)
	numberRe       = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?`)
	spacesRe       = regexp.MustCompile(`\s+`)
)

// Parse разбирает markdown-план. Тотальная функция: никогда не
// возвращает ошибку, кривой вход даёт меньше дней или пустой план.
// Это осознанное решение: отсутствие совпадения оставляет поле пустым
func Parse(markdown string) *models.PlanDocument {
	doc := &models.PlanDocument{}
	lines := strings.Split(markdown, "\n")

	var day *models.Day
	for i := 0; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], " \t\r")

		if m := dayRe.FindStringSubmatch(line); m != nil {
			if day != nil {
				doc.Days = append(doc.Days, *day)
			}
			day = &models.Day{Label: strings.TrimSpace(m[1])}
			continue
		}

		m := exerciseRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		// Заголовок упражнения вне открытого дня игнорируется
		if day == nil {
			continue
		}

		entry := models.ExerciseEntry{
			SourceRow: i + 1,
			Block:     m[1],
			Name:      strings.TrimSpace(m[2]),
		}

		// Пробегаем вперёд до следующего заголовка дня/упражнения
		j := i + 1
		for ; j < len(lines); j++ {
			body := strings.TrimRight(lines[j], " \t\r")
			if dayRe.MatchString(body) || exerciseRe.MatchString(body) {
				break
			}
			classifyLine(body, &entry)
		}
		day.Exercises = append(day.Exercises, entry)
		i = j - 1
	}

	if day != nil {
		doc.Days = append(doc.Days, *day)
	}
	return doc
}

// classifyLine относит строку тела упражнения к предписанию,
// отдыху или заметкам; всё прочее игнорируется
func classifyLine(line string, entry *models.ExerciseEntry) {
	if m := restRe.FindStringSubmatch(line); m != nil {
		if entry.Rest == "" {
			entry.Rest = strings.TrimSpace(m[1])
		}
		return
	}
	if m := notesRe.FindStringSubmatch(line); m != nil {
		if entry.Notes == "" {
			entry.Notes = strings.TrimSpace(m[1])
		}
		return
	}
	if m := prescriptionRe.FindStringSubmatch(line); m != nil {
		if entry.Sets != "" {
			return
		}
		entry.Sets = m[1]
		entry.Reps = cleanReps(m[2])
		entry.Load = cleanLoad(m[3])
	}
}

// cleanReps убирает слова единиц измерения и схлопывает пробелы.
// Если после зачистки строка пуста, остаётся исходный текст
func cleanReps(raw string) string {
	raw = strings.TrimSpace(raw)
	s := unitWordRe.ReplaceAllString(raw, "")
	s = strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
	if s == "" {
		return raw
	}
	return s
}

// cleanLoad извлекает первый числовой токен; если его нет,
// нагрузка остаётся как есть ("bodyweight" переживает парсинг)
func cleanLoad(raw string) string {
	raw = strings.TrimSpace(raw)
	if n := numberRe.FindString(raw); n != "" {
		return n
	}
	return raw
}
