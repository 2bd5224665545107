package generator

import (
	"strconv"
	"strings"
	"time"

	"fortbot/internal/models"
	"fortbot/internal/names"
	"fortbot/internal/syncer"
)

// progressIncrementKG шаг прогрессии основных движений
const progressIncrementKG = 2.5

// BuildDirectives строит директивы прогрессии из логов прошлой недели.
// Правила: основное движение, отработанное с RPE не выше 8, получает
// Progress с фиксацией нагрузки +2.5 кг; RPE 9.5 и выше — HoldLock на
// прошлых значениях; остальное — Neutral. На упражнение остаётся одна
// директива по самой свежей записи
func BuildDirectives(src HistorySource, ref time.Time) []models.ProgressionDirective {
	since := ref.AddDate(0, 0, -7).Format("2006-01-02")
	rows, err := src.LogsSince(since)
	if err != nil {
		return nil
	}

	latest := make(map[string]models.LogContextRow)
	var order []string
	for _, r := range rows {
		if !names.IsMainLift(r.Exercise) {
			continue
		}
		if strings.TrimSpace(r.Log) == "" && r.RPE == 0 {
			continue
		}
		key := names.Key(r.Exercise)
		if _, seen := latest[key]; !seen {
			order = append(order, key)
		}
		latest[key] = r // строки идут по возрастанию даты, остаётся свежая
	}

	var out []models.ProgressionDirective
	for _, key := range order {
		r := latest[key]
		out = append(out, directiveForRow(r))
	}
	return out
}

// directiveForRow директива по одной строке истории
func directiveForRow(r models.LogContextRow) models.ProgressionDirective {
	d := models.ProgressionDirective{
		Exercise: names.Display(r.Exercise),
		Day:      r.Day,
		Kind:     models.DirectiveNeutral,
	}

	rpe := r.RPE
	if rpe == 0 {
		if v, ok := syncer.CoerceRPE("", r.Log); ok {
			rpe = v
		}
	}
	if rpe == 0 {
		return d
	}

	n, err := strconv.ParseFloat(r.Load, 64)

	switch {
	case rpe >= 9.5:
		d.Kind = models.DirectiveHoldLock
		d.LockedSets = r.Sets
		d.LockedReps = r.Reps
		d.LockedLoad = r.Load
	case rpe <= 8.0 && err == nil:
		d.Kind = models.DirectiveProgress
		d.LockedSets = r.Sets
		d.LockedReps = r.Reps
		d.LockedLoad = formatLoad(n + progressIncrementKG)
	}
	return d
}

// formatLoad нагрузка как строка, хвостовой ".0" срезается
func formatLoad(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}
