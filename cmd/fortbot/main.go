package main

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron"

	"fortbot/clients/ai"
	"fortbot/internal/bot"
	"fortbot/internal/config"
	"fortbot/internal/generator"
	"fortbot/internal/gsheets"
	"fortbot/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("конфигурация: %v", err)
	}

	manager := store.NewManager(cfg.DBPath)
	defer manager.Close()

	aiClient := ai.NewClient(cfg.AnthropicAPIKey)
	aiClient.SetModel(cfg.AnthropicModel)

	sheets, err := gsheets.NewClient(cfg.GoogleCredentialsPath, cfg.SpreadsheetID)
	if err != nil {
		// Без таблицы бот остаётся рабочим: план пишется локально
		log.Printf("google sheets недоступен, работаем без листа: %v", err)
		sheets = nil
	}

	// nil *gsheets.Client нельзя класть в интерфейс напрямую
	var sink generator.SheetSink
	if sheets != nil {
		sink = sheets
	}
	orch := generator.New(aiClient, manager, sink, cfg.PlansDir)

	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN не задан; для работы без телеграма используй plangen")
	}
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("телеграм: %v", err)
	}

	b := bot.New(api, orch, manager, sheets, cfg.IncludeEmptyLogs)

	// Еженедельная генерация по расписанию из последних Fort-вводов
	c := cron.New()
	if err := c.AddFunc(cfg.CronSpec, b.RunScheduled); err != nil {
		log.Fatalf("крон-расписание %q: %v", cfg.CronSpec, err)
	}
	c.Start()
	defer c.Stop()

	if err := b.Start(); err != nil {
		log.Fatal(err)
	}
}
