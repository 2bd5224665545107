package store

import (
	"os"
	"path/filepath"
	"testing"

	"fortbot/internal/models"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestUpsertSession_Idempotent(t *testing.T) {
	st := openTemp(t)

	id1, err := st.UpsertSession("2025-06-03", "Tuesday", "Weekly Plan (6/2/2025)")
	if err != nil {
		t.Fatalf("UpsertSession() error = %v", err)
	}
	id2, err := st.UpsertSession("2025-06-03", "Tuesday", "renamed sheet")
	if err != nil {
		t.Fatalf("UpsertSession() repeat error = %v", err)
	}
	if id1 != id2 {
		t.Errorf("same (date, day) must keep one session: %d vs %d", id1, id2)
	}

	sum, err := st.Summary()
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if sum.Sessions != 1 {
		t.Errorf("sessions = %d, want 1", sum.Sessions)
	}
}

func TestUpsertExerciseAndLog(t *testing.T) {
	st := openTemp(t)

	sid, err := st.UpsertSession("2025-06-03", "Tuesday", "")
	if err != nil {
		t.Fatalf("UpsertSession() error = %v", err)
	}

	eid1, err := st.UpsertExercise(sid, models.SyncEntry{Exercise: "DB Row", Sets: "3", Reps: "10", Load: "24"})
	if err != nil {
		t.Fatalf("UpsertExercise() error = %v", err)
	}
	// то же упражнение с другой пунктуацией имени
	eid2, err := st.UpsertExercise(sid, models.SyncEntry{Exercise: "db-row", Sets: "3", Reps: "12", Load: "24"})
	if err != nil {
		t.Fatalf("UpsertExercise() repeat error = %v", err)
	}
	if eid1 != eid2 {
		t.Errorf("name key must deduplicate: %d vs %d", eid1, eid2)
	}

	if err := st.UpsertLog(eid1, "solid", 7, true); err != nil {
		t.Fatalf("UpsertLog() error = %v", err)
	}
	if err := st.UpsertLog(eid1, "updated", 0, false); err != nil {
		t.Fatalf("UpsertLog() repeat error = %v", err)
	}

	rows, err := st.LogsForExercise("db row", 10)
	if err != nil {
		t.Fatalf("LogsForExercise() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Log != "updated" {
		t.Errorf("log = %q, want last write", rows[0].Log)
	}
	if rows[0].RPE != 0 {
		t.Errorf("rpe = %v, want 0 after overwrite without rpe", rows[0].RPE)
	}
	if rows[0].Reps != "12" {
		t.Errorf("reps = %q, want updated prescription", rows[0].Reps)
	}
}

func TestLogsSince_Ascending(t *testing.T) {
	st := openTemp(t)

	for _, d := range []string{"2025-06-06", "2025-06-02", "2025-06-04"} {
		sid, err := st.UpsertSession(d, "Day", "")
		if err != nil {
			t.Fatalf("UpsertSession(%s) error = %v", d, err)
		}
		if _, err := st.UpsertExercise(sid, models.SyncEntry{Exercise: "Back Squat", Load: "100"}); err != nil {
			t.Fatalf("UpsertExercise() error = %v", err)
		}
	}

	rows, err := st.LogsSince("2025-06-03")
	if err != nil {
		t.Fatalf("LogsSince() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Date != "2025-06-04" || rows[1].Date != "2025-06-06" {
		t.Errorf("order = %s, %s; want ascending", rows[0].Date, rows[1].Date)
	}
}

func TestManagerRebuild_PreservesScans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fort.db")
	m := NewManager(path)
	defer m.Close()

	st, err := m.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if _, err := st.UpsertSession("2025-06-02", "Monday", "old sheet"); err != nil {
		t.Fatalf("UpsertSession() error = %v", err)
	}
	if err := st.UpsertScan(models.Scan{Date: "2025-06-01", WeightKG: 82.5, BodyFatPct: 17.0, Notes: "morning"}); err != nil {
		t.Fatalf("UpsertScan() error = %v", err)
	}

	sum, err := m.Rebuild(func(fresh *Store) error {
		sid, err := fresh.UpsertSession("2025-06-03", "Tuesday", "new sheet")
		if err != nil {
			return err
		}
		_, err = fresh.UpsertExercise(sid, models.SyncEntry{Exercise: "DB Row", Load: "24"})
		return err
	})
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	// старая сессия ушла, замер пережил перестройку
	if sum.Sessions != 1 || sum.Exercises != 1 || sum.Scans != 1 {
		t.Errorf("summary after rebuild = %+v", sum)
	}

	st, err = m.Get()
	if err != nil {
		t.Fatalf("Get() after rebuild error = %v", err)
	}
	scans, err := st.Scans()
	if err != nil {
		t.Fatalf("Scans() error = %v", err)
	}
	if len(scans) != 1 || scans[0].WeightKG != 82.5 {
		t.Errorf("scans = %+v", scans)
	}

	// временный файл подчищен
	if _, err := os.Stat(path + ".rebuild"); !os.IsNotExist(err) {
		t.Error("rebuild temp file left behind")
	}
}

func TestManagerRebuild_FeedErrorKeepsOldStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fort.db")
	m := NewManager(path)
	defer m.Close()

	st, err := m.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if _, err := st.UpsertSession("2025-06-02", "Monday", ""); err != nil {
		t.Fatalf("UpsertSession() error = %v", err)
	}

	if _, err := m.Rebuild(func(fresh *Store) error {
		return os.ErrInvalid
	}); err == nil {
		t.Fatal("Rebuild() must propagate feed error")
	}

	st, err = m.Get()
	if err != nil {
		t.Fatalf("Get() after failed rebuild error = %v", err)
	}
	sum, err := st.Summary()
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if sum.Sessions != 1 {
		t.Errorf("old data lost after failed rebuild: %+v", sum)
	}
}
