// Package repair детерминированная починка типовых ошибок модели:
// шесть упорядоченных текст-в-текст проходов над сырым планом.
package repair

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"fortbot/internal/models"
	"fortbot/internal/names"
	"fortbot/internal/plan"
)

var (
	dayRe          = regexp.MustCompile(`^##\s+(.+)$`)
	exerciseRe     = regexp.MustCompile(`^###\s+([A-Z]\d+)\.\s+(.+)$`)
	prescriptionRe = regexp.MustCompile(`(?i)^-\s*(\d+)\s*x\s*(.+?)\s*@\s*(.+)$`)
	kgLoadRe       = regexp.MustCompile(`(?i)(@\s*)(\d+(?:\.\d+)?)(\s*kg)`)
	rangeRe        = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[-–]\s*(\d+(?:\.\d+)?)`)
)

// Stats счётчики применённых правок по проходам. При повторных
// попытках коррекции накапливаются, не сбрасываются
type Stats struct {
	Aliases   int
	EvenLoads int
	Locks     int
	Ranges    int
	Anchors   int
	Names     int
}

// Add прибавляет счётчики другого запуска
func (s *Stats) Add(o Stats) {
	s.Aliases += o.Aliases
	s.EvenLoads += o.EvenLoads
	s.Locks += o.Locks
	s.Ranges += o.Ranges
	s.Anchors += o.Anchors
	s.Names += o.Names
}

// Total суммарное число правок
func (s Stats) Total() int {
	return s.Aliases + s.EvenLoads + s.Locks + s.Ranges + s.Anchors + s.Names
}

// Repair прогоняет шесть проходов в фиксированном порядке. Порядок
// один и тот же всегда, в том числе внутри цикла коррекции.
// Проходы 1, 2, 4, 6 идемпотентны, вставка якорей ограничена их числом
func Repair(text string, directives []models.ProgressionDirective, meta *models.FortMeta, aliases map[string]string) (string, Stats) {
	var stats Stats
	text, stats.Aliases = applyAliases(text, aliases)
	text, stats.EvenLoads = evenDumbbellLoads(text)
	text, stats.Locks = applyLockedDirectives(text, directives)
	text, stats.Ranges = collapseRanges(text)
	text, stats.Anchors = insertMissingAnchors(text, meta, aliases)
	text, stats.Names = canonicalizeNames(text)
	return text, stats
}

// applyAliases регистронезависимая литеральная замена по словарю.
// Ключи применяются от длинных к коротким, чтобы пересекающиеся
// ключи не затеняли друг друга частично
func applyAliases(text string, aliases map[string]string) (string, int) {
	if len(aliases) == 0 {
		return text, 0
	}
	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	count := 0
	for _, k := range keys {
		replacement := aliases[k]
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(k))
		text = re.ReplaceAllStringFunc(text, func(m string) string {
			if m == replacement {
				return m
			}
			count++
			return replacement
		})
	}
	return text, count
}

// evenDumbbellLoads приводит нагрузку гантельных (не основных)
// упражнений к чётному целому числу килограммов. Нечётное уходит к
// ближайшему из N-1/N+1 относительно исходного значения,
// при равенстве — вниз
func evenDumbbellLoads(text string) (string, int) {
	lines := strings.Split(text, "\n")
	count := 0
	dbActive := false

	for i, line := range lines {
		if m := exerciseRe.FindStringSubmatch(line); m != nil {
			name := m[2]
			dbActive = names.IsDumbbell(name) && !names.IsMainLift(name)
			continue
		}
		if dayRe.MatchString(line) {
			dbActive = false
			continue
		}
		if !dbActive || !prescriptionRe.MatchString(line) {
			continue
		}

		fixed := kgLoadRe.ReplaceAllStringFunc(line, func(m string) string {
			sub := kgLoadRe.FindStringSubmatch(m)
			n, err := strconv.ParseFloat(sub[2], 64)
			if err != nil {
				return m
			}
			r := int(math.Round(n))
			if r%2 != 0 {
				down, up := r-1, r+1
				if math.Abs(n-float64(down)) <= math.Abs(n-float64(up)) {
					r = down
				} else {
					r = up
				}
			}
			out := sub[1] + strconv.Itoa(r) + sub[3]
			if out != m {
				count++
			}
			return out
		})
		lines[i] = fixed
	}
	return strings.Join(lines, "\n"), count
}

// applyLockedDirectives принудительно ставит предписание из
// залоченной директивы, перекрывая то, что выдала модель
func applyLockedDirectives(text string, directives []models.ProgressionDirective) (string, int) {
	locked := make([]models.ProgressionDirective, 0, len(directives))
	for _, d := range directives {
		if d.Locked() && d.LockedSets != "" {
			locked = append(locked, d)
		}
	}
	if len(locked) == 0 {
		return text, 0
	}

	lines := strings.Split(text, "\n")
	count := 0
	currentDay := ""
	var pending *models.ProgressionDirective

	for i, line := range lines {
		if m := dayRe.FindStringSubmatch(line); m != nil {
			currentDay = m[1]
			pending = nil
			continue
		}
		if m := exerciseRe.FindStringSubmatch(line); m != nil {
			pending = nil
			for idx := range locked {
				d := &locked[idx]
				if !names.Same(m[2], d.Exercise) {
					continue
				}
				if d.Day != "" && !strings.Contains(strings.ToLower(currentDay), strings.ToLower(d.Day)) {
					continue
				}
				pending = d
				break
			}
			continue
		}
		if pending == nil || !prescriptionRe.MatchString(line) {
			continue
		}

		forced := fmt.Sprintf("- %s x %s @ %s", pending.LockedSets, pending.LockedReps, withKg(pending.LockedLoad))
		if lines[i] != forced {
			lines[i] = forced
			count++
		}
		pending = nil
	}
	return strings.Join(lines, "\n"), count
}

// withKg добавляет "kg" к чисто числовой нагрузке
func withKg(load string) string {
	if _, err := strconv.ParseFloat(load, 64); err == nil {
		return load + " kg"
	}
	return load
}

// collapseRanges схлопывает числовые диапазоны A-B в предписаниях:
// диапазон после @ (нагрузка) — в середину, до @ (повторы) — в
// верхнюю границу
func collapseRanges(text string) (string, int) {
	lines := strings.Split(text, "\n")
	count := 0

	for i, line := range lines {
		if !prescriptionRe.MatchString(line) {
			continue
		}
		atIdx := strings.Index(line, "@")
		matches := rangeRe.FindAllStringSubmatchIndex(line, -1)
		if matches == nil {
			continue
		}

		out := line
		for mi := len(matches) - 1; mi >= 0; mi-- {
			m := matches[mi]
			lo, _ := strconv.ParseFloat(line[m[2]:m[3]], 64)
			hi, _ := strconv.ParseFloat(line[m[4]:m[5]], 64)
			var repl string
			if atIdx >= 0 && m[0] > atIdx {
				repl = formatMidpoint(lo, hi)
			} else {
				repl = line[m[4]:m[5]]
			}
			out = out[:m[0]] + repl + out[m[1]:]
			count++
		}
		lines[i] = out
	}
	return strings.Join(lines, "\n"), count
}

// formatMidpoint середина диапазона с одним знаком после запятой,
// хвостовой ".0" срезается
func formatMidpoint(lo, hi float64) string {
	s := strconv.FormatFloat((lo+hi)/2, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}

// insertMissingAnchors дописывает потерянные якорные упражнения в их
// день минимальным блоком из скомпилированных метаданных
func insertMissingAnchors(text string, meta *models.FortMeta, aliases map[string]string) (string, int) {
	if meta == nil || len(meta.SectionOrder) == 0 {
		return text, 0
	}

	count := 0
	for _, day := range meta.SectionOrder {
		for _, anchor := range meta.Anchors[day] {
			if anchorPresent(text, day, anchor.Name, aliases) {
				continue
			}
			text = appendToDay(text, day, plan.ExerciseBlock(anchor))
			count++
		}
	}
	return text, count
}

// anchorPresent ищет якорь в его дне с учётом алиасов
func anchorPresent(text, day, anchorName string, aliases map[string]string) bool {
	want := resolveKey(anchorName, aliases)
	doc := plan.Parse(text)
	for _, d := range doc.Days {
		if !strings.Contains(strings.ToLower(d.Label), strings.ToLower(day)) {
			continue
		}
		for _, e := range d.Exercises {
			if resolveKey(e.Name, aliases) == want {
				return true
			}
		}
	}
	return false
}

// resolveKey прогоняет название через алиасы и возвращает ключ сравнения
func resolveKey(name string, aliases map[string]string) string {
	return names.AliasedKey(name, aliases)
}

// appendToDay вставляет блок в конец секции дня; если секции нет,
// день добавляется в конец плана
func appendToDay(text, day, block string) string {
	lines := strings.Split(text, "\n")
	start := -1
	for i, line := range lines {
		if m := dayRe.FindStringSubmatch(line); m != nil {
			if strings.Contains(strings.ToLower(m[1]), strings.ToLower(day)) {
				start = i
				break
			}
		}
	}
	if start < 0 {
		trimmed := strings.TrimRight(text, "\n")
		if trimmed != "" {
			trimmed += "\n\n"
		}
		return trimmed + "## " + day + "\n\n" + block
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if dayRe.MatchString(lines[i]) {
			end = i
			break
		}
	}

	section := strings.TrimRight(strings.Join(lines[start:end], "\n"), "\n")
	rebuilt := section + "\n\n" + strings.TrimRight(block, "\n")
	out := append([]string{}, lines[:start]...)
	out = append(out, strings.Split(rebuilt, "\n")...)
	if end < len(lines) {
		out = append(out, "")
		out = append(out, lines[end:]...)
	}
	return strings.Join(out, "\n")
}

// canonicalizeNames переписывает названия только в заголовках
// упражнений через каноническую отображаемую форму
func canonicalizeNames(text string) (string, int) {
	lines := strings.Split(text, "\n")
	count := 0
	for i, line := range lines {
		m := exerciseRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		display := names.Display(m[2])
		if display == strings.TrimSpace(m[2]) {
			continue
		}
		lines[i] = fmt.Sprintf("### %s. %s", m[1], display)
		count++
	}
	return strings.Join(lines, "\n"), count
}
