// Package syncer движок синхронизации: вывод календарной даты сессии
// из частичных текстовых улик, коэрция RPE и запись логов в хранилище.
package syncer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

var weekdays = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

var (
	// Известные шаблоны названий листов с якорной датой
	sheetDateRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)weekly plan\s*\((\d{1,2})/(\d{1,2})/(\d{4})\)`),
		regexp.MustCompile(`(?i)week of\s+(\d{1,2})/(\d{1,2})/(\d{4})`),
		regexp.MustCompile(`\((\d{1,2})/(\d{1,2})/(\d{4})\)`),
	}
	inlineDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2}|\d{4}))?\b`)
	rpeRe        = regexp.MustCompile(`(?i)rpe\s*[:=]?\s*(\d+(?:\.\d+)?)`)
)

// ExtractDayName первое вхождение названия дня недели в тексте,
// без учёта регистра. Возвращает каноническое имя
func ExtractDayName(text string) (string, bool) {
	low := strings.ToLower(text)
	best := -1
	name := ""
	for _, wd := range weekdays {
		idx := strings.Index(low, strings.ToLower(wd))
		if idx >= 0 && (best < 0 || idx < best) {
			best = idx
			name = wd
		}
	}
	return name, best >= 0
}

// ParseSheetAnchorDate якорная дата из названия листа; первый
// сработавший шаблон побеждает
func ParseSheetAnchorDate(sheetName string) (time.Time, bool) {
	for _, re := range sheetDateRes {
		m := re.FindStringSubmatch(sheetName)
		if m == nil {
			continue
		}
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if t, ok := makeDate(year, month, day); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// BestYearForMonthDay подбирает год для даты без года: из
// {год якоря - 1, год якоря, год якоря + 1} берётся тот, чья дата
// ближе всего к якорю по модулю. Без якоря — текущий год
func BestYearForMonthDay(anchor time.Time, hasAnchor bool, month, day int, now time.Time) int {
	if !hasAnchor {
		return now.Year()
	}
	bestYear := anchor.Year()
	bestDiff := time.Duration(-1)
	for y := anchor.Year() - 1; y <= anchor.Year()+1; y++ {
		t, ok := makeDate(y, month, day)
		if !ok {
			continue
		}
		diff := t.Sub(anchor)
		if diff < 0 {
			diff = -diff
		}
		if bestDiff < 0 || diff < bestDiff {
			bestDiff = diff
			bestYear = y
		}
	}
	return bestYear
}

// InferDateFromAnchor ищет от якоря вперёд 0..6 дней подходящий день
// недели. Прямой поиск по модулю 7 всегда находит совпадение; обратная
// ветка 1..7 оставлена защитно и на реальных входах не срабатывает
func InferDateFromAnchor(anchor time.Time, dayName string) (time.Time, bool) {
	target, ok := weekdayIndex(dayName)
	if !ok {
		return time.Time{}, false
	}
	for i := 0; i <= 6; i++ {
		c := anchor.AddDate(0, 0, i)
		if int(c.Weekday()) == target {
			return c, true
		}
	}
	for i := 1; i <= 7; i++ {
		c := anchor.AddDate(0, 0, -i)
		if int(c.Weekday()) == target {
			return c, true
		}
	}
	return time.Time{}, false
}

// InferSessionDate ярусный вывод даты сессии: (1) встроенная дата
// M/D[/YY[YY]] в метке дня, (2) якорь листа плюс день недели,
// (3) запасная дата вызывающего. Каждый ярус пробуется только если
// предыдущий ничего не дал
func InferSessionDate(sheetName, dayLabel, dayName, fallbackISO string) string {
	return inferSessionDateAt(sheetName, dayLabel, dayName, fallbackISO, time.Now())
}

func inferSessionDateAt(sheetName, dayLabel, dayName, fallbackISO string, now time.Time) string {
	anchor, hasAnchor := ParseSheetAnchorDate(sheetName)

	if m := inlineDateRe.FindStringSubmatch(dayLabel); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		var year int
		switch len(m[3]) {
		case 2:
			y, _ := strconv.Atoi(m[3])
			year = 2000 + y
		case 4:
			year, _ = strconv.Atoi(m[3])
		default:
			year = BestYearForMonthDay(anchor, hasAnchor, month, day, now)
		}
		if t, ok := makeDate(year, month, day); ok {
			return t.Format(isoDate)
		}
	}

	if hasAnchor && dayName != "" {
		if t, ok := InferDateFromAnchor(anchor, dayName); ok {
			return t.Format(isoDate)
		}
	}

	return fallbackISO
}

// CoerceRPE явное поле побеждает, если парсится и лежит в [1, 10];
// иначе первый rpe-паттерн в свободном тексте лога с той же
// проверкой диапазона
func CoerceRPE(explicit, logText string) (float64, bool) {
	if v, err := strconv.ParseFloat(strings.TrimSpace(explicit), 64); err == nil {
		if v >= 1.0 && v <= 10.0 {
			return v, true
		}
	}
	if m := rpeRe.FindStringSubmatch(logText); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v >= 1.0 && v <= 10.0 {
			return v, true
		}
	}
	return 0, false
}

// makeDate строит дату и отбрасывает переполнение месяца/дня
func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func weekdayIndex(dayName string) (int, bool) {
	for i, wd := range weekdays {
		if strings.EqualFold(wd, strings.TrimSpace(dayName)) {
			return i, true
		}
	}
	return 0, false
}
