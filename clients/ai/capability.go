// Package ai клиент текстовой генерации: ёмкость TextGenerator и её
// реализация поверх Anthropic Messages API со стримингом.
package ai

// EventKind вид события стриминга
type EventKind string

const (
	EventRequestStarted EventKind = "request_started"
	EventMessageStarted EventKind = "message_started"
	EventTextDelta      EventKind = "text_delta"
	EventMessageDelta   EventKind = "message_delta"
	EventMessageStopped EventKind = "message_stopped"
)

// Event событие стриминга; заполнены только поля своего вида
type Event struct {
	Kind         EventKind
	Chunk        string
	TotalChars   int
	InputTokens  int
	OutputTokens int
}

// EventSink приёмник событий стриминга; nil — события не нужны
type EventSink func(Event)

// Result итог генерации
type Result struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// TextGenerator ёмкость генерации текста: промпт на входе, текст на
// выходе, события стриминга по желанию
type TextGenerator interface {
	Generate(systemPrompt, userPrompt string, sink EventSink) (Result, error)
}
