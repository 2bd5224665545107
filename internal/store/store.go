// Package store файловое хранилище тренировочной истории на SQLite:
// сессии, упражнения, логи и ручные замеры состава тела.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"fortbot/internal/models"
	"fortbot/internal/names"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	session_date TEXT NOT NULL,
	day_name     TEXT NOT NULL,
	sheet_name   TEXT NOT NULL DEFAULT '',
	UNIQUE(session_date, day_name)
);

CREATE TABLE IF NOT EXISTS exercises (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	name_key   TEXT NOT NULL,
	block      TEXT NOT NULL DEFAULT '',
	sets       TEXT NOT NULL DEFAULT '',
	reps       TEXT NOT NULL DEFAULT '',
	load       TEXT NOT NULL DEFAULT '',
	rest       TEXT NOT NULL DEFAULT '',
	notes      TEXT NOT NULL DEFAULT '',
	UNIQUE(session_id, name_key)
);

CREATE TABLE IF NOT EXISTS logs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	exercise_id INTEGER NOT NULL UNIQUE REFERENCES exercises(id) ON DELETE CASCADE,
	log_text    TEXT NOT NULL DEFAULT '',
	rpe         REAL
);

CREATE TABLE IF NOT EXISTS scans (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	scan_date    TEXT NOT NULL UNIQUE,
	weight_kg    REAL NOT NULL DEFAULT 0,
	body_fat_pct REAL NOT NULL DEFAULT 0,
	notes        TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_exercises_name_key ON exercises(name_key);
CREATE INDEX IF NOT EXISTS idx_sessions_date ON sessions(session_date);
`

// Store обёртка над одним файлом SQLite
type Store struct {
	db   *sql.DB
	path string
}

// Open открывает (или создаёт) хранилище по пути
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("открытие базы %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("создание схемы: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close закрывает соединение
func (s *Store) Close() error {
	return s.db.Close()
}

// Path путь файла хранилища
func (s *Store) Path() string {
	return s.path
}

// UpsertSession создаёт или обновляет сессию по (дата, день)
func (s *Store) UpsertSession(dateISO, dayName, sheetName string) (int64, error) {
	_, err := s.db.Exec(`
		INSERT INTO sessions (session_date, day_name, sheet_name)
		VALUES (?, ?, ?)
		ON CONFLICT(session_date, day_name) DO UPDATE SET sheet_name = excluded.sheet_name`,
		dateISO, dayName, sheetName)
	if err != nil {
		return 0, err
	}
	var id int64
	err = s.db.QueryRow(`SELECT id FROM sessions WHERE session_date = ? AND day_name = ?`,
		dateISO, dayName).Scan(&id)
	return id, err
}

// UpsertExercise создаёт или обновляет упражнение сессии по ключу имени
func (s *Store) UpsertExercise(sessionID int64, e models.SyncEntry) (int64, error) {
	key := names.Key(e.Exercise)
	_, err := s.db.Exec(`
		INSERT INTO exercises (session_id, name, name_key, block, sets, reps, load, rest, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, name_key) DO UPDATE SET
			name = excluded.name, block = excluded.block, sets = excluded.sets,
			reps = excluded.reps, load = excluded.load, rest = excluded.rest,
			notes = excluded.notes`,
		sessionID, e.Exercise, key, e.Block, e.Sets, e.Reps, e.Load, e.Rest, e.Notes)
	if err != nil {
		return 0, err
	}
	var id int64
	err = s.db.QueryRow(`SELECT id FROM exercises WHERE session_id = ? AND name_key = ?`,
		sessionID, key).Scan(&id)
	return id, err
}

// UpsertLog создаёт или обновляет лог упражнения
func (s *Store) UpsertLog(exerciseID int64, logText string, rpe float64, hasRPE bool) error {
	var rpeVal sql.NullFloat64
	if hasRPE {
		rpeVal = sql.NullFloat64{Float64: rpe, Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT INTO logs (exercise_id, log_text, rpe)
		VALUES (?, ?, ?)
		ON CONFLICT(exercise_id) DO UPDATE SET log_text = excluded.log_text, rpe = excluded.rpe`,
		exerciseID, logText, rpeVal)
	return err
}

// Summary агрегатные счётчики хранилища
func (s *Store) Summary() (models.DBSummary, error) {
	var sum models.DBSummary
	row := s.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM sessions),
			(SELECT COUNT(*) FROM exercises),
			(SELECT COUNT(*) FROM logs),
			(SELECT COUNT(*) FROM scans)`)
	err := row.Scan(&sum.Sessions, &sum.Exercises, &sum.Logs, &sum.Scans)
	return sum, err
}

const contextSelect = `
	SELECT s.session_date, s.day_name, e.name, e.sets, e.reps, e.load,
	       COALESCE(l.log_text, ''), COALESCE(l.rpe, 0)
	FROM exercises e
	JOIN sessions s ON s.id = e.session_id
	LEFT JOIN logs l ON l.exercise_id = e.id`

// RecentLogs последние строки истории без фильтра по упражнению
func (s *Store) RecentLogs(limit int) ([]models.LogContextRow, error) {
	rows, err := s.db.Query(contextSelect+`
		ORDER BY s.session_date DESC, e.id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanContextRows(rows)
}

// LogsForExercise последние строки истории одного упражнения
func (s *Store) LogsForExercise(nameKey string, limit int) ([]models.LogContextRow, error) {
	rows, err := s.db.Query(contextSelect+`
		WHERE e.name_key = ?
		ORDER BY s.session_date DESC
		LIMIT ?`, nameKey, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanContextRows(rows)
}

// LogsSince строки истории начиная с даты (для директив прогрессии)
func (s *Store) LogsSince(dateISO string) ([]models.LogContextRow, error) {
	rows, err := s.db.Query(contextSelect+`
		WHERE s.session_date >= ?
		ORDER BY s.session_date ASC, e.id ASC`, dateISO)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanContextRows(rows)
}

func scanContextRows(rows *sql.Rows) ([]models.LogContextRow, error) {
	var out []models.LogContextRow
	for rows.Next() {
		var r models.LogContextRow
		if err := rows.Scan(&r.Date, &r.Day, &r.Exercise, &r.Sets, &r.Reps, &r.Load, &r.Log, &r.RPE); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Scans все замеры состава тела
func (s *Store) Scans() ([]models.Scan, error) {
	rows, err := s.db.Query(`
		SELECT scan_date, weight_kg, body_fat_pct, notes
		FROM scans ORDER BY scan_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Scan
	for rows.Next() {
		var sc models.Scan
		if err := rows.Scan(&sc.Date, &sc.WeightKG, &sc.BodyFatPct, &sc.Notes); err != nil {
			continue
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// UpsertScan создаёт или обновляет замер по дате
func (s *Store) UpsertScan(sc models.Scan) error {
	_, err := s.db.Exec(`
		INSERT INTO scans (scan_date, weight_kg, body_fat_pct, notes)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(scan_date) DO UPDATE SET
			weight_kg = excluded.weight_kg,
			body_fat_pct = excluded.body_fat_pct,
			notes = excluded.notes`,
		sc.Date, sc.WeightKG, sc.BodyFatPct, sc.Notes)
	return err
}
