package generator

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"fortbot/clients/ai"
	"fortbot/internal/fort"
	"fortbot/internal/models"
	"fortbot/internal/plan"
	"fortbot/internal/repair"
	"fortbot/internal/syncer"
	"fortbot/internal/validate"
)

// State состояние машины генерации. Переходы строго вперёд, кроме
// самопетли коррекции
type State string

const (
	StatePreparing         State = "preparing"
	StateNormalizing       State = "normalizing_context"
	StatePass1Selecting    State = "pass1_selecting"
	StateBuildingContext   State = "building_context"
	StateRequestingModel   State = "requesting_model"
	StateStreamingResponse State = "streaming_response"
	StateRepairing         State = "repairing"
	StateValidating        State = "validating"
	StateCorrecting        State = "correcting"
	StateWritingOutputs    State = "writing_outputs"
	StateCompleted         State = "completed"
)

// maxCorrectionAttempts жёсткая граница цикла коррекции
const maxCorrectionAttempts = 2

// Progress уведомление о ходе генерации
type Progress struct {
	State  State
	Detail string
	Chars  int
}

// SheetSink внешний приёмник плана (Google Sheets). Его отказ
// деградирует до строки статуса, наружу не летит
type SheetSink interface {
	WritePlan(sheetName string, rows [][]string) error
}

// Request вход одного запуска генерации
type Request struct {
	FortMonday    string
	FortWednesday string
	FortFriday    string
	Aliases       map[string]string
	ReferenceDate time.Time
}

// RunResult итог запуска. Политика fail-open: план возвращается
// всегда, неустранённые нарушения идут данными, не ошибкой
type RunResult struct {
	RunID           string
	SheetName       string
	PlanText        string
	Rows            [][]string
	Violations      []models.Violation
	Unresolved      int
	Attempts        int
	Stats           repair.Stats
	InputTokens     int
	OutputTokens    int
	PlanSummary     string
	FidelitySummary string
	SheetStatus     string
	ArtifactPath    string
}

// Orchestrator машина генерации. Один логический запуск за раз,
// параллелизма между запусками нет
type Orchestrator struct {
	gen      ai.TextGenerator
	history  HistorySource
	sheets   SheetSink
	plansDir string
	progress chan Progress
}

// New создаёт оркестратор. history и sheets могут быть nil:
// без истории план генерируется без контекста, без приёмника запись
// в лист пропускается
func New(gen ai.TextGenerator, history HistorySource, sheets SheetSink, plansDir string) *Orchestrator {
	return &Orchestrator{
		gen:      gen,
		history:  history,
		sheets:   sheets,
		plansDir: plansDir,
		// Канал на один элемент, переполнение отбрасывается:
		// без подписчика уведомления просто теряются
		progress: make(chan Progress, 1),
	}
}

// Progress канал уведомлений для единственного подписчика
func (o *Orchestrator) Progress() <-chan Progress {
	return o.progress
}

func (o *Orchestrator) notify(state State, detail string, chars int) {
	select {
	case o.progress <- Progress{State: state, Detail: detail, Chars: chars}:
	default:
	}
}

// Run прогоняет полный цикл генерации. Отказ основного или
// коррекционного вызова модели — фатален; отказ первого прохода,
// прицельного контекста и записи в лист деградирует
func (o *Orchestrator) Run(req Request) (*RunResult, error) {
	runID := uuid.NewString()

	// Застрявшее уведомление прошлого запуска освобождает буфер,
	// иначе первые уведомления нового запуска будут отброшены
	select {
	case <-o.progress:
	default:
	}

	ref := req.ReferenceDate
	if ref.IsZero() {
		ref = time.Now()
	}
	if sanitized, replaced := syncer.SanitizeReferenceDate(ref, time.Now()); replaced {
		log.Printf("опорная дата %s вне разумного окна, заменена на сегодня", ref.Format("2006-01-02"))
		ref = sanitized
	}

	o.notify(StatePreparing, "компиляция Fort-метаданных", 0)
	meta := fort.Compile(req.FortMonday, req.FortWednesday, req.FortFriday)
	fortRaw := fort.RawContext(req.FortMonday, req.FortWednesday, req.FortFriday)

	o.notify(StateNormalizing, "директивы прогрессии", 0)
	var directives []models.ProgressionDirective
	if o.history != nil {
		directives = BuildDirectives(o.history, ref)
	}

	result := &RunResult{RunID: runID, SheetName: syncer.WeeklySheetName(ref)}

	o.notify(StatePass1Selecting, "выбор упражнений", 0)
	selection := o.selectSupplemental(fortRaw, result)

	o.notify(StateBuildingContext, "контекст истории", 0)
	historyCtx := ""
	if o.history != nil {
		if selection != nil {
			historyCtx = BuildTargetedContext(o.history, selection, DefaultContextBudget, DefaultLogsPerExercise)
		}
		if historyCtx == "" {
			historyCtx = BuildGenericContext(o.history, DefaultGenericRows, DefaultContextBudget)
		}
	}

	o.notify(StateRequestingModel, "основная генерация", 0)
	res, err := o.gen.Generate(SystemPrompt, BuildGenerationPrompt(fortRaw, directives, historyCtx), o.streamSink())
	if err != nil {
		return nil, fmt.Errorf("основной вызов модели: %w", err)
	}
	result.InputTokens += res.InputTokens
	result.OutputTokens += res.OutputTokens

	text := StripPreamble(res.Text)

	o.notify(StateRepairing, "починка", 0)
	text, result.Stats = repair.Repair(text, directives, meta, req.Aliases)

	o.notify(StateValidating, "валидация", 0)
	pv := validate.ValidatePlan(text, directives)
	fv := validate.ValidateFortFidelity(text, meta, req.Aliases)
	violations := append(append([]models.Violation{}, pv.Violations...), fv.Violations...)

	for len(violations) > 0 && result.Attempts < maxCorrectionAttempts {
		result.Attempts++
		o.notify(StateCorrecting, fmt.Sprintf("попытка %d, нарушений: %d", result.Attempts, len(violations)), 0)

		res, err = o.gen.Generate(SystemPrompt, BuildCorrectionPrompt(text, violations, fortRaw, fv.Summary), o.streamSink())
		if err != nil {
			return nil, fmt.Errorf("коррекционный вызов модели: %w", err)
		}
		result.InputTokens += res.InputTokens
		result.OutputTokens += res.OutputTokens

		text = StripPreamble(res.Text)
		var extra repair.Stats
		text, extra = repair.Repair(text, directives, meta, req.Aliases)
		result.Stats.Add(extra)

		pv = validate.ValidatePlan(text, directives)
		fv = validate.ValidateFortFidelity(text, meta, req.Aliases)
		violations = append(append([]models.Violation{}, pv.Violations...), fv.Violations...)
	}

	o.notify(StateWritingOutputs, "запись результатов", 0)
	result.PlanText = text
	result.Rows = plan.SheetRows(plan.Parse(text))
	result.Violations = violations
	result.Unresolved = len(violations)
	result.PlanSummary = pv.Summary
	result.FidelitySummary = fv.Summary
	result.ArtifactPath = o.writeArtifact(result.SheetName, runID, text)
	result.SheetStatus = o.writeSheet(result.SheetName, result.Rows)

	o.notify(StateCompleted, fmt.Sprintf("готово, неустранённых нарушений: %d", result.Unresolved), 0)
	return result, nil
}

// selectSupplemental первый проход. Любой провал, включая сетевой,
// деградирует до nil — дальше сработает generic-контекст
func (o *Orchestrator) selectSupplemental(fortRaw string, result *RunResult) map[string][]string {
	res, err := o.gen.Generate("", BuildPass1Prompt(fortRaw), nil)
	if err != nil {
		log.Printf("первый проход провалился, уходим в generic-контекст: %v", err)
		return nil
	}
	result.InputTokens += res.InputTokens
	result.OutputTokens += res.OutputTokens

	sel := ParseSelection(res.Text, fort.SupplementalDays)
	if sel == nil {
		log.Printf("ответ первого прохода не разобрался по всем дням, уходим в generic-контекст")
	}
	return sel
}

// streamSink пробрасывает дельты стрима в уведомления прогресса
func (o *Orchestrator) streamSink() ai.EventSink {
	return func(ev ai.Event) {
		if ev.Kind == ai.EventTextDelta {
			o.notify(StateStreamingResponse, "", ev.TotalChars)
		}
	}
}

// writeArtifact сохраняет локальный артефакт плана; отказ не фатален
func (o *Orchestrator) writeArtifact(sheetName, runID, text string) string {
	if o.plansDir == "" {
		return ""
	}
	if err := os.MkdirAll(o.plansDir, 0o755); err != nil {
		log.Printf("каталог артефактов: %v", err)
		return ""
	}
	// Слэши из даты в названии листа не должны стать подкаталогами
	fileName := strings.ReplaceAll(fmt.Sprintf("%s %s.md", sheetName, shortID(runID)), "/", "-")
	path := filepath.Join(o.plansDir, fileName)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		log.Printf("запись артефакта: %v", err)
		return ""
	}
	return path
}

// writeSheet best-effort запись во внешний лист
func (o *Orchestrator) writeSheet(sheetName string, rows [][]string) string {
	if o.sheets == nil {
		return "лист не настроен, запись пропущена"
	}
	if err := o.sheets.WritePlan(sheetName, rows); err != nil {
		log.Printf("запись в лист %q: %v", sheetName, err)
		return fmt.Sprintf("запись в лист не удалась: %v", err)
	}
	return "план записан в лист " + sheetName
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
