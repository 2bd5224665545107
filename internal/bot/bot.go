// Package bot тонкий телеграм-слой: запуск генерации с живым
// прогрессом, синхронизация логов и сводка хранилища. Вся логика
// живёт во внутренних пакетах, здесь только проводка.
package bot

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fortbot/internal/generator"
	"fortbot/internal/gsheets"
	"fortbot/internal/models"
	"fortbot/internal/store"
	"fortbot/internal/syncer"
)

// Bot телеграм-бот поверх оркестратора и хранилища
type Bot struct {
	api              *tgbotapi.BotAPI
	orch             *generator.Orchestrator
	manager          *store.Manager
	sheets           *gsheets.Client
	includeEmptyLogs bool

	// mu закрывает состояние ниже: цикл обновлений и крон-запуски
	// живут в разных горутинах
	mu sync.Mutex

	// Сырые Fort-вводы недели; задаются через /fort_*
	fortMonday    string
	fortWednesday string
	fortFriday    string
	pendingFort   string

	// Чат последнего собеседника; сюда уходят результаты крон-запусков
	lastChatID int64

	// Один запуск генерации за раз: /plan и крон делят оркестратор
	running bool
}

// New создаёт бот
func New(api *tgbotapi.BotAPI, orch *generator.Orchestrator, manager *store.Manager, sheets *gsheets.Client, includeEmptyLogs bool) *Bot {
	return &Bot{
		api:              api,
		orch:             orch,
		manager:          manager,
		sheets:           sheets,
		includeEmptyLogs: includeEmptyLogs,
	}
}

// Start запускает цикл обработки обновлений
func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	log.Printf("Бот запущен: @%s", b.api.Self.UserName)

	for update := range updates {
		if update.Message == nil {
			continue
		}
		b.handleMessage(update.Message)
	}
	return nil
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	b.rememberChat(msg.Chat.ID)
	if msg.IsCommand() {
		b.handleCommand(msg)
		return
	}
	b.handleText(msg)
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		b.reply(msg, "Команды:\n"+
			"/fort_mon, /fort_wed, /fort_fri — задать Fort-день (текст следом)\n"+
			"/plan — сгенерировать недельный план\n"+
			"/sync — подтянуть логи из таблицы\n"+
			"/stats — сводка хранилища")
	case "fort_mon":
		b.expectFort("monday")
		b.reply(msg, "Пришли текст Fort-понедельника")
	case "fort_wed":
		b.expectFort("wednesday")
		b.reply(msg, "Пришли текст Fort-среды")
	case "fort_fri":
		b.expectFort("friday")
		b.reply(msg, "Пришли текст Fort-пятницы")
	case "plan":
		b.handlePlan(msg)
	case "sync":
		b.handleSync(msg)
	case "stats":
		b.handleStats(msg)
	default:
		b.reply(msg, "Не знаю такую команду, см. /help")
	}
}

// handleText свободный текст: либо ожидаемый Fort-ввод, либо
// вставленный лог тренировки
func (b *Bot) handleText(msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	if ack := b.captureFort(text); ack != "" {
		b.reply(msg, ack)
		return
	}

	b.handleLogPaste(msg, text)
}

// captureFort записывает текст как ожидаемый Fort-день. Пустой
// результат значит, что ввод дня не ждали
func (b *Bot) captureFort(text string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.pendingFort {
	case "monday":
		b.fortMonday = text
		b.pendingFort = ""
		return "Fort-понедельник сохранён"
	case "wednesday":
		b.fortWednesday = text
		b.pendingFort = ""
		return "Fort-среда сохранена"
	case "friday":
		b.fortFriday = text
		b.pendingFort = ""
		return "Fort-пятница сохранена"
	}
	return ""
}

func (b *Bot) expectFort(day string) {
	b.mu.Lock()
	b.pendingFort = day
	b.mu.Unlock()
}

func (b *Bot) rememberChat(id int64) {
	b.mu.Lock()
	b.lastChatID = id
	b.mu.Unlock()
}

func (b *Bot) lastChat() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastChatID
}

// snapshotFort снимает Fort-вводы одним срезом; запрос генерации
// собирается из снимка, не из живых полей
func (b *Bot) snapshotFort() (mon, wed, fri string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fortMonday, b.fortWednesday, b.fortFriday
}

// tryBeginRun занимает слот генерации; false значит, что запуск уже идёт
func (b *Bot) tryBeginRun() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return false
	}
	b.running = true
	return true
}

func (b *Bot) endRun() {
	b.mu.Lock()
	b.running = false
	b.mu.Unlock()
}

// handlePlan запускает генерацию и живёт на канале прогресса
func (b *Bot) handlePlan(msg *tgbotapi.Message) {
	mon, wed, fri := b.snapshotFort()
	if mon == "" && wed == "" && fri == "" {
		b.reply(msg, "Сначала задай Fort-дни: /fort_mon, /fort_wed, /fort_fri")
		return
	}
	if !b.tryBeginRun() {
		b.reply(msg, "Генерация уже идёт, подожди её окончания")
		return
	}

	status := b.replyAndTrack(msg, "Запускаю генерацию…")

	done := make(chan struct{})
	go b.watchProgress(msg.Chat.ID, status, done)

	go func() {
		defer b.endRun()
		defer close(done)
		res, err := b.orch.Run(generator.Request{
			FortMonday:    mon,
			FortWednesday: wed,
			FortFriday:    fri,
			ReferenceDate: time.Now(),
		})
		if err != nil {
			b.send(msg.Chat.ID, fmt.Sprintf("Генерация упала: %v", err))
			return
		}
		b.send(msg.Chat.ID, fmt.Sprintf(
			"План готов: %s\nПравок: %d, попыток коррекции: %d, неустранённых нарушений: %d\n%s",
			res.SheetName, res.Stats.Total(), res.Attempts, res.Unresolved, res.SheetStatus))
	}()
}

// RunScheduled крон-запуск генерации. Без заданных Fort-дней или
// известного чата только пишет в лог
func (b *Bot) RunScheduled() {
	mon, wed, fri := b.snapshotFort()
	if mon == "" && wed == "" && fri == "" {
		log.Printf("крон: Fort-дни не заданы, генерация пропущена")
		return
	}
	if !b.tryBeginRun() {
		log.Printf("крон: генерация уже идёт, запуск пропущен")
		return
	}
	defer b.endRun()

	res, err := b.orch.Run(generator.Request{
		FortMonday:    mon,
		FortWednesday: wed,
		FortFriday:    fri,
		ReferenceDate: time.Now(),
	})
	if err != nil {
		log.Printf("крон: генерация упала: %v", err)
		return
	}
	log.Printf("крон: план %q готов, неустранённых нарушений: %d", res.SheetName, res.Unresolved)
	if chatID := b.lastChat(); chatID != 0 {
		b.send(chatID, fmt.Sprintf("Еженедельный план готов: %s\n%s", res.SheetName, res.SheetStatus))
	}
}

// watchProgress редактирует статусное сообщение по уведомлениям
func (b *Bot) watchProgress(chatID int64, messageID int, done <-chan struct{}) {
	for {
		select {
		case p := <-b.orch.Progress():
			text := string(p.State)
			if p.Detail != "" {
				text += ": " + p.Detail
			}
			if p.Chars > 0 {
				text += fmt.Sprintf(" (%d симв.)", p.Chars)
			}
			edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
			if _, err := b.api.Send(edit); err != nil {
				log.Printf("редактирование прогресса: %v", err)
			}
		case <-done:
			return
		}
	}
}

// handleSync подтягивает логи из ближайшего недельного листа
func (b *Bot) handleSync(msg *tgbotapi.Message) {
	if b.sheets == nil {
		b.reply(msg, "Таблица не настроена")
		return
	}
	st, err := b.manager.Get()
	if err != nil {
		b.reply(msg, fmt.Sprintf("Хранилище недоступно: %v", err))
		return
	}

	titles, err := b.sheets.ListSheetTitles()
	if err != nil {
		b.reply(msg, fmt.Sprintf("Чтение таблицы не удалось: %v", err))
		return
	}

	var cands []syncer.Candidate
	for _, t := range titles {
		if d, ok := syncer.ParseSheetAnchorDate(t); ok {
			cands = append(cands, syncer.Candidate{Name: t, Date: d})
		}
	}
	picked, ok := syncer.PickCandidate(cands, time.Now(), syncer.DefaultNearWindowDays, true)
	if !ok {
		b.reply(msg, "Не нашёл ни одного недельного листа")
		return
	}

	sessions, err := b.sheets.ReadSessions(picked.Name)
	if err != nil {
		b.reply(msg, fmt.Sprintf("Чтение листа %q: %v", picked.Name, err))
		return
	}

	var sum models.DBSummary
	for _, s := range sessions {
		sum, err = syncer.Sync(st, models.SyncInput{
			SheetName:        picked.Name,
			DayLabel:         s.DayLabel,
			FallbackISO:      time.Now().Format("2006-01-02"),
			Entries:          s.Entries,
			IncludeEmptyLogs: b.includeEmptyLogs,
		})
		if err != nil {
			b.reply(msg, fmt.Sprintf("Синхронизация %q: %v", s.DayLabel, err))
			return
		}
	}
	b.reply(msg, fmt.Sprintf("Синхронизировано из %q\nСессий: %d, упражнений: %d, логов: %d",
		picked.Name, sum.Sessions, sum.Exercises, sum.Logs))
}

// handleLogPaste вставленный лог: первая строка — метка дня,
// дальше строки "Упражнение: текст лога"
func (b *Bot) handleLogPaste(msg *tgbotapi.Message, text string) {
	st, err := b.manager.Get()
	if err != nil {
		b.reply(msg, fmt.Sprintf("Хранилище недоступно: %v", err))
		return
	}

	lines := strings.Split(text, "\n")
	dayLabel := strings.TrimSpace(lines[0])

	var entries []models.SyncEntry
	for _, line := range lines[1:] {
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		entries = append(entries, models.SyncEntry{
			Exercise: strings.TrimSpace(parts[0]),
			Log:      strings.TrimSpace(parts[1]),
		})
	}
	if len(entries) == 0 {
		b.reply(msg, "Не разобрал ни одной строки лога. Формат:\nTuesday 6/4\nBench Press: 3x8 @ 60, rpe 8")
		return
	}

	sum, err := syncer.Sync(st, models.SyncInput{
		DayLabel:         dayLabel,
		FallbackISO:      time.Now().Format("2006-01-02"),
		Entries:          entries,
		IncludeEmptyLogs: b.includeEmptyLogs,
	})
	if err != nil {
		b.reply(msg, fmt.Sprintf("Синхронизация не удалась: %v", err))
		return
	}
	b.reply(msg, fmt.Sprintf("Записано. Сессий: %d, упражнений: %d, логов: %d",
		sum.Sessions, sum.Exercises, sum.Logs))
}

func (b *Bot) handleStats(msg *tgbotapi.Message) {
	st, err := b.manager.Get()
	if err != nil {
		b.reply(msg, fmt.Sprintf("Хранилище недоступно: %v", err))
		return
	}
	sum, err := st.Summary()
	if err != nil {
		b.reply(msg, fmt.Sprintf("Сводка не удалась: %v", err))
		return
	}
	b.reply(msg, fmt.Sprintf("Сессий: %d\nУпражнений: %d\nЛогов: %d\nЗамеров: %d",
		sum.Sessions, sum.Exercises, sum.Logs, sum.Scans))
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	b.send(msg.Chat.ID, text)
}

func (b *Bot) replyAndTrack(msg *tgbotapi.Message, text string) int {
	m := tgbotapi.NewMessage(msg.Chat.ID, text)
	sent, err := b.api.Send(m)
	if err != nil {
		log.Printf("отправка сообщения: %v", err)
		return 0
	}
	return sent.MessageID
}

func (b *Bot) send(chatID int64, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(m); err != nil {
		log.Printf("отправка сообщения: %v", err)
	}
}
