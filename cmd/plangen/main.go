package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"fortbot/clients/ai"
	"fortbot/internal/config"
	"fortbot/internal/generator"
	"fortbot/internal/gsheets"
	"fortbot/internal/models"
	"fortbot/internal/store"
	"fortbot/internal/syncer"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Использование: plangen <generate|sync|rebuild> [флаги]")
	fmt.Fprintln(os.Stderr, "  generate — сгенерировать недельный план из Fort-файлов")
	fmt.Fprintln(os.Stderr, "  sync     — подтянуть логи из таблицы в локальную базу")
	fmt.Fprintln(os.Stderr, "  rebuild  — перестроить базу из всех недельных листов")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Конфигурация: %v\n", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		runGenerate(cfg, os.Args[2:])
	case "sync":
		runSync(cfg, os.Args[2:])
	case "rebuild":
		runRebuild(cfg)
	default:
		usage()
	}
}

// runGenerate полный цикл генерации из markdown-файлов Fort-дней
func runGenerate(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	monPath := fs.String("mon", "", "Файл Fort-понедельника")
	wedPath := fs.String("wed", "", "Файл Fort-среды")
	friPath := fs.String("fri", "", "Файл Fort-пятницы")
	noSheet := fs.Bool("no-sheet", false, "Не писать план в таблицу")
	fs.Parse(args)

	if *monPath == "" && *wedPath == "" && *friPath == "" {
		fmt.Println("❌ Укажи хотя бы один Fort-файл: -mon, -wed, -fri")
		os.Exit(1)
	}

	manager := store.NewManager(cfg.DBPath)
	defer manager.Close()

	aiClient := ai.NewClient(cfg.AnthropicAPIKey)
	aiClient.SetModel(cfg.AnthropicModel)

	var sink generator.SheetSink
	if !*noSheet && cfg.GoogleCredentialsPath != "" {
		sheets, err := gsheets.NewClient(cfg.GoogleCredentialsPath, cfg.SpreadsheetID)
		if err != nil {
			fmt.Printf("❌ Google Sheets: %v\n", err)
			os.Exit(1)
		}
		sink = sheets
	}

	orch := generator.New(aiClient, manager, sink, cfg.PlansDir)

	// Прогресс в консоль вместо телеграм-сообщения
	done := make(chan struct{})
	go func() {
		for {
			select {
			case p := <-orch.Progress():
				if p.Chars > 0 {
					fmt.Printf("  %s (%d симв.)\n", p.State, p.Chars)
				} else {
					fmt.Printf("  %s\n", p.State)
				}
			case <-done:
				return
			}
		}
	}()

	res, err := orch.Run(generator.Request{
		FortMonday:    readFile(*monPath),
		FortWednesday: readFile(*wedPath),
		FortFriday:    readFile(*friPath),
		ReferenceDate: time.Now(),
	})
	close(done)
	if err != nil {
		fmt.Printf("❌ Генерация: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ План готов: %s\n", res.SheetName)
	fmt.Printf("   Правок: %d, попыток коррекции: %d\n", res.Stats.Total(), res.Attempts)
	fmt.Printf("   %s\n   %s\n", res.PlanSummary, res.FidelitySummary)
	if res.Unresolved > 0 {
		fmt.Printf("⚠️  Неустранённых нарушений: %d\n", res.Unresolved)
		for _, v := range res.Violations {
			fmt.Printf("   - [%s] %s\n", v.Code(), v.Message())
		}
	}
	if res.ArtifactPath != "" {
		fmt.Printf("   Сохранено: %s\n", res.ArtifactPath)
	}
	fmt.Printf("   %s\n", res.SheetStatus)
}

// runSync синхронизация из ближайшего к сегодня недельного листа
func runSync(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	sheetName := fs.String("sheet", "", "Имя листа (по умолчанию — ближайший к сегодня)")
	fs.Parse(args)

	sheets, manager := mustSheets(cfg), store.NewManager(cfg.DBPath)
	defer manager.Close()

	st, err := manager.Get()
	if err != nil {
		fmt.Printf("❌ Хранилище: %v\n", err)
		os.Exit(1)
	}

	name := *sheetName
	if name == "" {
		picked, ok := pickSheet(sheets, time.Now())
		if !ok {
			fmt.Println("❌ Не нашёл ни одного недельного листа")
			os.Exit(1)
		}
		name = picked
	}

	sum, err := syncSheet(sheets, st, name, cfg.IncludeEmptyLogs)
	if err != nil {
		fmt.Printf("❌ Синхронизация: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Синхронизировано из %q\n", name)
	printSummary(sum)
}

// runRebuild перестройка базы из всех недельных листов таблицы.
// Замеры состава тела переживают перестройку
func runRebuild(cfg *config.Config) {
	sheets, manager := mustSheets(cfg), store.NewManager(cfg.DBPath)
	defer manager.Close()

	titles, err := sheets.ListSheetTitles()
	if err != nil {
		fmt.Printf("❌ Чтение таблицы: %v\n", err)
		os.Exit(1)
	}

	var weekly []string
	for _, t := range titles {
		if _, ok := syncer.ParseSheetAnchorDate(t); ok {
			weekly = append(weekly, t)
		}
	}
	if len(weekly) == 0 {
		fmt.Println("❌ В таблице нет недельных листов")
		os.Exit(1)
	}

	fmt.Printf("Перестройка из %d листов…\n", len(weekly))
	sum, err := manager.Rebuild(func(fresh *store.Store) error {
		for _, name := range weekly {
			if _, err := syncSheet(sheets, fresh, name, cfg.IncludeEmptyLogs); err != nil {
				return fmt.Errorf("лист %q: %w", name, err)
			}
			fmt.Printf("  %s\n", name)
		}
		return nil
	})
	if err != nil {
		fmt.Printf("❌ Перестройка: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ База перестроена")
	printSummary(sum)
}

// syncSheet прогоняет все сессии листа через синхронизатор
func syncSheet(sheets *gsheets.Client, st syncer.SessionStore, name string, includeEmpty bool) (models.DBSummary, error) {
	sessions, err := sheets.ReadSessions(name)
	if err != nil {
		return models.DBSummary{}, err
	}
	var sum models.DBSummary
	for _, s := range sessions {
		sum, err = syncer.Sync(st, models.SyncInput{
			SheetName:        name,
			DayLabel:         s.DayLabel,
			FallbackISO:      time.Now().Format("2006-01-02"),
			Entries:          s.Entries,
			IncludeEmptyLogs: includeEmpty,
		})
		if err != nil {
			return models.DBSummary{}, err
		}
	}
	return sum, nil
}

func pickSheet(sheets *gsheets.Client, now time.Time) (string, bool) {
	titles, err := sheets.ListSheetTitles()
	if err != nil {
		return "", false
	}
	var cands []syncer.Candidate
	for _, t := range titles {
		if d, ok := syncer.ParseSheetAnchorDate(t); ok {
			cands = append(cands, syncer.Candidate{Name: t, Date: d})
		}
	}
	picked, ok := syncer.PickCandidate(cands, now, syncer.DefaultNearWindowDays, true)
	if !ok {
		return "", false
	}
	return picked.Name, true
}

func mustSheets(cfg *config.Config) *gsheets.Client {
	sheets, err := gsheets.NewClient(cfg.GoogleCredentialsPath, cfg.SpreadsheetID)
	if err != nil {
		fmt.Printf("❌ Google Sheets: %v\n", err)
		os.Exit(1)
	}
	return sheets
}

func printSummary(sum models.DBSummary) {
	fmt.Printf("   Сессий: %d, упражнений: %d, логов: %d, замеров: %d\n",
		sum.Sessions, sum.Exercises, sum.Logs, sum.Scans)
}

func readFile(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("❌ Чтение %s: %v\n", path, err)
		os.Exit(1)
	}
	return string(data)
}
