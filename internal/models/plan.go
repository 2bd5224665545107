package models

// PlanDocument распарсенный недельный план: дни в исходном порядке
type PlanDocument struct {
	Days []Day
}

// Day один день плана. Label — свободный текст заголовка,
// на этапе парсинга не сверяется со списком дней недели
type Day struct {
	Label     string
	Exercises []ExerciseEntry
}

// ExerciseEntry одно упражнение дня.
// Sets/Reps/Load намеренно строки: в планах встречаются нечисловые
// значения ("AMRAP", "12 min"), числовая интерпретация делается
// отдельными хелперами там, где правило требует число
type ExerciseEntry struct {
	SourceRow int // номер строки в исходном тексте, 0 — неизвестен
	Block     string
	Name      string
	Sets      string
	Reps      string
	Load      string
	Rest      string
	Notes     string
	Log       string
}

// FortMeta скомпилированные метаданные трёх Fort-дней (Пн/Ср/Пт):
// якорные упражнения по дням и обнаруженный порядок секций.
// Строится один раз перед генерацией и дальше не меняется
type FortMeta struct {
	SectionOrder []string
	Anchors      map[string][]ExerciseEntry
}

// AnchorCount возвращает общее число якорных упражнений
func (m *FortMeta) AnchorCount() int {
	n := 0
	for _, list := range m.Anchors {
		n += len(list)
	}
	return n
}

// DirectiveKind вид директивы прогрессии
type DirectiveKind string

const (
	DirectiveProgress DirectiveKind = "progress"
	DirectiveHoldLock DirectiveKind = "hold_lock"
	DirectiveNeutral  DirectiveKind = "neutral"
)

// ProgressionDirective директива прогрессии для одного упражнения.
// Строится один раз на запуск из логов прошлой недели, потребляется
// конвейером починки и валидатором, после запуска выбрасывается.
// Locked-поля заполнены только для Progress/HoldLock
type ProgressionDirective struct {
	Exercise   string
	Day        string
	Kind       DirectiveKind
	LockedSets string
	LockedReps string
	LockedLoad string // числовая строка без "kg", например "62.5"
}

// Locked сообщает, фиксирует ли директива предписание
func (d ProgressionDirective) Locked() bool {
	return d.Kind == DirectiveProgress || d.Kind == DirectiveHoldLock
}
