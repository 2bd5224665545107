package syncer

import (
	"fmt"
	"strings"
	"time"

	"fortbot/internal/models"
)

// SessionStore ёмкость хранилища, нужная движку синхронизации
type SessionStore interface {
	UpsertSession(dateISO, dayName, sheetName string) (int64, error)
	UpsertExercise(sessionID int64, e models.SyncEntry) (int64, error)
	UpsertLog(exerciseID int64, logText string, rpe float64, hasRPE bool) error
	Summary() (models.DBSummary, error)
}

// Sync сводит одну залогированную сессию в хранилище: выводит день и
// дату, апсертит сессию, затем каждую запись. Запись пропускается,
// если имя упражнения пустое, или лог пуст и пустые логи не включены
func Sync(st SessionStore, in models.SyncInput) (models.DBSummary, error) {
	dayName := in.DayName
	if n, ok := ExtractDayName(in.DayLabel); ok {
		dayName = n
	}

	dateISO := InferSessionDate(in.SheetName, in.DayLabel, dayName, in.FallbackISO)
	if dayName == "" {
		if t, err := time.Parse(isoDate, dateISO); err == nil {
			dayName = t.Weekday().String()
		}
	}

	sessionID, err := st.UpsertSession(dateISO, dayName, in.SheetName)
	if err != nil {
		return models.DBSummary{}, fmt.Errorf("апсерт сессии %s: %w", dateISO, err)
	}

	for _, e := range in.Entries {
		if strings.TrimSpace(e.Exercise) == "" {
			continue
		}
		if strings.TrimSpace(e.Log) == "" && !in.IncludeEmptyLogs {
			continue
		}

		exerciseID, err := st.UpsertExercise(sessionID, e)
		if err != nil {
			return models.DBSummary{}, fmt.Errorf("апсерт упражнения %q: %w", e.Exercise, err)
		}

		rpe, hasRPE := CoerceRPE(e.RPE, e.Log)
		if err := st.UpsertLog(exerciseID, e.Log, rpe, hasRPE); err != nil {
			return models.DBSummary{}, fmt.Errorf("апсерт лога %q: %w", e.Exercise, err)
		}
	}

	return st.Summary()
}
