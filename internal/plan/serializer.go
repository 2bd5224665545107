package plan

import (
	"fmt"
	"strings"

	"fortbot/internal/models"
)

// SheetColumns фиксированная схема листа: 8 колонок в этом порядке.
// Log при записи генератором всегда пуст, заполняется позже журналом
var SheetColumns = [8]string{"Block", "Exercise", "Sets", "Reps", "Load(kg)", "Rest", "Notes", "Log"}

// Row сериализует упражнение в строку листа. Инвариант держится на
// границе сериализации: ровно 8 колонок, восьмая (Log) пустая,
// сколько бы колонок ни видел парсер
func Row(e models.ExerciseEntry) []string {
	return []string{e.Block, e.Name, e.Sets, e.Reps, e.Load, e.Rest, e.Notes, ""}
}

// SheetRows сериализует план в строки листа: строка схемы, затем для
// каждого дня маркерная строка с меткой дня и строки упражнений.
// Все строки дополнены до 8 колонок
func SheetRows(doc *models.PlanDocument) [][]string {
	rows := [][]string{SheetColumns[:]}
	for _, day := range doc.Days {
		marker := make([]string, 8)
		marker[0] = day.Label
		rows = append(rows, marker)
		for _, e := range day.Exercises {
			rows = append(rows, Row(e))
		}
	}
	return rows
}

// Markdown сериализует план обратно в markdown в том формате,
// который понимает Parse
func Markdown(doc *models.PlanDocument) string {
	var sb strings.Builder
	for di, day := range doc.Days {
		if di > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("## " + day.Label + "\n")
		for _, e := range day.Exercises {
			sb.WriteString("\n")
			sb.WriteString(ExerciseBlock(e))
		}
	}
	return sb.String()
}

// ExerciseBlock сериализует одно упражнение в markdown-блок
func ExerciseBlock(e models.ExerciseEntry) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("### %s. %s\n", e.Block, e.Name))
	if e.Sets != "" {
		load := e.Load
		if numberRe.MatchString(load) && numberRe.FindString(load) == load {
			load += " kg"
		}
		sb.WriteString(fmt.Sprintf("- %s x %s @ %s\n", e.Sets, e.Reps, load))
	}
	if e.Rest != "" {
		sb.WriteString("- **Rest:** " + e.Rest + "\n")
	}
	if e.Notes != "" {
		sb.WriteString("- **Notes:** " + e.Notes + "\n")
	}
	return sb.String()
}
