package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config содержит конфигурацию приложения
type Config struct {
	// Anthropic
	AnthropicAPIKey string
	AnthropicModel  string

	// Google Sheets
	SpreadsheetID         string
	GoogleCredentialsPath string

	// Telegram (опционально: без токена работает только CLI)
	BotToken string

	// Локальные файлы
	DBPath   string
	PlansDir string

	// Синхронизация
	IncludeEmptyLogs bool

	// Расписание еженедельной генерации
	CronSpec string
}

// Load загружает конфигурацию из переменных окружения или .env файла.
// Отсутствие ключа API или ID таблицы — фатальная ошибка установки
func Load() (*Config, error) {
	env, err := loadEnvFile(".env")
	if err != nil {
		env = make(map[string]string)
	}

	getEnv := func(key, defaultValue string) string {
		if value := os.Getenv(key); value != "" {
			return value
		}
		if value, ok := env[key]; ok && value != "" {
			return value
		}
		return defaultValue
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	dataDir := getEnv("DATA_DIR", filepath.Join(homeDir, ".fortbot"))

	cfg := &Config{
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", ""),

		SpreadsheetID:         getEnv("SPREADSHEET_ID", ""),
		GoogleCredentialsPath: getEnv("GOOGLE_CREDENTIALS_PATH", "google-credentials.json"),

		BotToken: getEnv("BOT_TOKEN", ""),

		DBPath:   getEnv("DB_PATH", filepath.Join(dataDir, "workouts.db")),
		PlansDir: getEnv("PLANS_DIR", filepath.Join(dataDir, "plans")),

		IncludeEmptyLogs: getEnv("INCLUDE_EMPTY_LOGS", "false") == "true",

		// Воскресенье, 18:00 — план на следующую неделю
		CronSpec: getEnv("CRON_SPEC", "0 0 18 * * 0"),
	}

	if cfg.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY не задан")
	}
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("SPREADSHEET_ID не задан")
	}

	return cfg, nil
}

// loadEnvFile читает .env файл
func loadEnvFile(filename string) (map[string]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	env := make(map[string]string)
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		env[key] = value
	}

	return env, scanner.Err()
}
