package models

// SyncEntry предписанное и залогированное состояние одного упражнения
// за одну сессию. Потребляется движком синхронизации ровно один раз
type SyncEntry struct {
	Block    string
	Exercise string
	Sets     string
	Reps     string
	Load     string
	Rest     string
	Notes    string
	Log      string
	RPE      string // явное поле RPE из листа, может быть пустым
}

// SyncInput вход движка синхронизации: одна сессия целиком
type SyncInput struct {
	SheetName        string
	DayLabel         string
	DayName          string // запасное имя дня, если из DayLabel не извлеклось
	FallbackISO      string // дата на случай провала всех ярусов вывода
	Entries          []SyncEntry
	IncludeEmptyLogs bool
}

// DBSummary агрегатные счётчики хранилища
type DBSummary struct {
	Sessions  int
	Exercises int
	Logs      int
	Scans     int
}

// LogContextRow строка истории для контекста генерации
type LogContextRow struct {
	Date     string // ISO
	Day      string
	Exercise string
	Sets     string
	Reps     string
	Load     string
	Log      string
	RPE      float64 // 0 — RPE не зафиксирован
}

// Scan замер состава тела. Вводится вручную, при перестройке базы
// переносится в новое хранилище как есть
type Scan struct {
	Date       string // ISO
	WeightKG   float64
	BodyFatPct float64
	Notes      string
}
