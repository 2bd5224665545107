// Package fort компиляция метаданных Fort-дней: якорные упражнения
// и порядок секций из трёх сырых вводов (Пн/Ср/Пт).
package fort

import (
	"strings"

	"fortbot/internal/models"
	"fortbot/internal/plan"
)

// FortDays Fort-дни в каноническом порядке
var FortDays = []string{"Monday", "Wednesday", "Friday"}

// SupplementalDays дни, которые программирует модель
var SupplementalDays = []string{"Tuesday", "Thursday", "Saturday"}

// Compile строит метаданные из сырых вводов Fort-дней.
// Ввод без заголовка дня оборачивается заголовком соответствующего
// дня, дальше работает обычный парсер. Пустые вводы пропускаются
func Compile(monday, wednesday, friday string) *models.FortMeta {
	meta := &models.FortMeta{
		Anchors: make(map[string][]models.ExerciseEntry),
	}

	raws := []string{monday, wednesday, friday}
	for i, raw := range raws {
		day := FortDays[i]
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.HasPrefix(raw, "## ") {
			raw = "## " + day + "\n" + raw
		}
		doc := plan.Parse(raw)
		var anchors []models.ExerciseEntry
		for _, d := range doc.Days {
			anchors = append(anchors, d.Exercises...)
		}
		if len(anchors) == 0 {
			continue
		}
		meta.SectionOrder = append(meta.SectionOrder, day)
		meta.Anchors[day] = anchors
	}
	return meta
}

// RawContext собирает исходные Fort-вводы в один блок для промпта
func RawContext(monday, wednesday, friday string) string {
	var sb strings.Builder
	raws := map[string]string{
		"Monday":    strings.TrimSpace(monday),
		"Wednesday": strings.TrimSpace(wednesday),
		"Friday":    strings.TrimSpace(friday),
	}
	for _, day := range FortDays {
		if raws[day] == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		if !strings.HasPrefix(raws[day], "## ") {
			sb.WriteString("## " + day + "\n")
		}
		sb.WriteString(raws[day])
	}
	return sb.String()
}
