package store

import (
	"fmt"
	"log"
	"os"
	"sync"

	"fortbot/internal/models"
)

// Manager кэшированный хэндл хранилища под мьютексом. Позволяет
// читать из слоя представления, пока идёт перестройка: перестройка
// собирает новую базу во временный файл и атомарно подменяет старый,
// так что читатель никогда не видит наполовину собранное хранилище
type Manager struct {
	mu    sync.Mutex
	path  string
	store *Store
}

// NewManager создаёт менеджер; база открывается лениво
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Get возвращает кэшированный хэндл, открывая его при надобности
func (m *Manager) Get() (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked()
}

func (m *Manager) getLocked() (*Store, error) {
	if m.store != nil {
		return m.store, nil
	}
	st, err := Open(m.path)
	if err != nil {
		return nil, err
	}
	m.store = st
	return st, nil
}

// Close закрывает кэшированный хэндл
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store != nil {
		m.store.Close()
		m.store = nil
	}
}

// Rebuild полная перестройка: feed наполняет свежую базу во временном
// файле, замеры состава тела переносятся из старой базы (они не
// восстановимы из ленты перестройки), затем атомарная подмена файла
// и инвалидация кэшированного хэндла. Всё под одним замком
func (m *Manager) Rebuild(feed func(*Store) error) (models.DBSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tmpPath := m.path + ".rebuild"
	os.Remove(tmpPath)

	fresh, err := Open(tmpPath)
	if err != nil {
		return models.DBSummary{}, fmt.Errorf("создание временной базы: %w", err)
	}

	if err := feed(fresh); err != nil {
		fresh.Close()
		os.Remove(tmpPath)
		return models.DBSummary{}, fmt.Errorf("наполнение временной базы: %w", err)
	}

	if err := m.migrateScansLocked(fresh); err != nil {
		log.Printf("перенос замеров при перестройке: %v", err)
	}

	if err := fresh.Close(); err != nil {
		os.Remove(tmpPath)
		return models.DBSummary{}, fmt.Errorf("закрытие временной базы: %w", err)
	}

	if m.store != nil {
		m.store.Close()
		m.store = nil
	}
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		os.Remove(tmpPath)
		return models.DBSummary{}, fmt.Errorf("удаление старой базы: %w", err)
	}
	if err := os.Rename(tmpPath, m.path); err != nil {
		return models.DBSummary{}, fmt.Errorf("подмена базы: %w", err)
	}

	st, err := m.getLocked()
	if err != nil {
		return models.DBSummary{}, err
	}
	return st.Summary()
}

// RecentLogs запрос к текущему хэндлу; безопасен во время перестройки
func (m *Manager) RecentLogs(limit int) ([]models.LogContextRow, error) {
	st, err := m.Get()
	if err != nil {
		return nil, err
	}
	return st.RecentLogs(limit)
}

// LogsForExercise запрос к текущему хэндлу
func (m *Manager) LogsForExercise(nameKey string, limit int) ([]models.LogContextRow, error) {
	st, err := m.Get()
	if err != nil {
		return nil, err
	}
	return st.LogsForExercise(nameKey, limit)
}

// LogsSince запрос к текущему хэндлу
func (m *Manager) LogsSince(dateISO string) ([]models.LogContextRow, error) {
	st, err := m.Get()
	if err != nil {
		return nil, err
	}
	return st.LogsSince(dateISO)
}

// migrateScansLocked копирует ручные замеры из старой базы в свежую
func (m *Manager) migrateScansLocked(fresh *Store) error {
	if _, err := os.Stat(m.path); os.IsNotExist(err) {
		return nil
	}
	old, err := m.getLocked()
	if err != nil {
		return err
	}
	scans, err := old.Scans()
	if err != nil {
		return err
	}
	for _, sc := range scans {
		if err := fresh.UpsertScan(sc); err != nil {
			return err
		}
	}
	return nil
}
