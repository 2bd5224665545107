package syncer

import (
	"fmt"
	"sort"
	"time"
)

// DefaultNearWindowDays окно близости для выбора кандидата
const DefaultNearWindowDays = 35

// Candidate кандидат выбора: лист или план с привязанной датой
type Candidate struct {
	Name string
	Date time.Time
}

// PickCandidate общая политика выбора листа/плана по опорной дате:
// внутри окна — минимальная дистанция в днях, при равенстве
// предпочтение сегодня-или-будущему, затем более свежей дате;
// вне окна — глобально самый свежий кандидат, если разрешён fallback
func PickCandidate(cands []Candidate, ref time.Time, nearWindowDays int, fallbackToMostRecent bool) (Candidate, bool) {
	if len(cands) == 0 {
		return Candidate{}, false
	}
	if nearWindowDays <= 0 {
		nearWindowDays = DefaultNearWindowDays
	}

	refDay := truncateDay(ref)
	var near []Candidate
	for _, c := range cands {
		if absDays(truncateDay(c.Date), refDay) <= nearWindowDays {
			near = append(near, c)
		}
	}

	if len(near) > 0 {
		sort.SliceStable(near, func(i, j int) bool {
			di := absDays(truncateDay(near[i].Date), refDay)
			dj := absDays(truncateDay(near[j].Date), refDay)
			if di != dj {
				return di < dj
			}
			fi := !truncateDay(near[i].Date).Before(refDay)
			fj := !truncateDay(near[j].Date).Before(refDay)
			if fi != fj {
				return fi
			}
			return near[i].Date.After(near[j].Date)
		})
		return near[0], true
	}

	if !fallbackToMostRecent {
		return Candidate{}, false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.Date.After(best.Date) {
			best = c
		}
	}
	return best, true
}

// SanitizeReferenceDate заменяет опорную дату на "сейчас", если её год
// расходится с текущим больше чем на 2; второй результат — факт замены
func SanitizeReferenceDate(ref, now time.Time) (time.Time, bool) {
	diff := ref.Year() - now.Year()
	if diff > 2 || diff < -2 {
		return now, true
	}
	return ref, false
}

// WeeklySheetName название недельного листа "Weekly Plan (M/D/YYYY)",
// где дата — понедельник нужной недели: выходная опорная дата уходит
// на понедельник следующей недели, будничная откатывается к началу
// текущей
func WeeklySheetName(ref time.Time) string {
	monday := WeekMonday(ref)
	return fmt.Sprintf("Weekly Plan (%d/%d/%d)", int(monday.Month()), monday.Day(), monday.Year())
}

// WeekMonday понедельник недели по правилу выше
func WeekMonday(ref time.Time) time.Time {
	ref = truncateDay(ref)
	switch ref.Weekday() {
	case time.Saturday:
		return ref.AddDate(0, 0, 2)
	case time.Sunday:
		return ref.AddDate(0, 0, 1)
	default:
		return ref.AddDate(0, 0, -(int(ref.Weekday()) - int(time.Monday)))
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func absDays(a, b time.Time) int {
	d := int(a.Sub(b).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}
