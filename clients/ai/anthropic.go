package ai

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicAPIURL  = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"

	DefaultModel  = "claude-sonnet-4-20250514"
	FallbackModel = "claude-3-5-haiku-20241022"

	defaultMaxTokens = 8192
)

// Client клиент Anthropic Messages API
type Client struct {
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// NewClient создаёт новый клиент
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:    apiKey,
		model:     DefaultModel,
		maxTokens: defaultMaxTokens,
		httpClient: &http.Client{
			Timeout: 180 * time.Second,
		},
	}
}

// SetModel устанавливает модель
func (c *Client) SetModel(model string) {
	if model != "" {
		c.model = model
	}
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system,omitempty"`
	Messages  []apiMessage `json:"messages"`
	Stream    bool         `json:"stream,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate выполняет запрос генерации. Пробуем основную модель, при
// ошибке — запасную. С приёмником событий идёт стриминговый путь,
// без него — обычный запрос
func (c *Client) Generate(systemPrompt, userPrompt string, sink EventSink) (Result, error) {
	models := []string{c.model}
	if c.model != FallbackModel {
		models = append(models, FallbackModel)
	}

	var lastErr error
	for _, model := range models {
		var res Result
		var err error
		if sink != nil {
			res, err = c.generateStreaming(model, systemPrompt, userPrompt, sink)
		} else {
			res, err = c.generateOnce(model, systemPrompt, userPrompt)
		}
		if err == nil {
			return res, nil
		}
		lastErr = err
	}
	return Result{}, lastErr
}

func (c *Client) newRequest(req apiRequest) (*http.Request, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("сериализация запроса: %w", err)
	}

	httpReq, err := http.NewRequest("POST", anthropicAPIURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("создание запроса: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	return httpReq, nil
}

// generateOnce нестриминговый запрос
func (c *Client) generateOnce(model, systemPrompt, userPrompt string) (Result, error) {
	httpReq, err := c.newRequest(apiRequest{
		Model:     model,
		MaxTokens: c.maxTokens,
		System:    systemPrompt,
		Messages:  []apiMessage{{Role: "user", Content: userPrompt}},
	})
	if err != nil {
		return Result{}, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("запрос к API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("чтение ответа: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return Result{}, fmt.Errorf("парсинг ответа: %w", err)
	}
	if apiResp.Error != nil {
		return Result{}, fmt.Errorf("ошибка API: %s", apiResp.Error.Message)
	}
	if len(apiResp.Content) == 0 {
		return Result{}, fmt.Errorf("пустой ответ от API")
	}

	var sb strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return Result{
		Text:         sb.String(),
		InputTokens:  apiResp.Usage.InputTokens,
		OutputTokens: apiResp.Usage.OutputTokens,
	}, nil
}

// streamEvent полезные куски SSE-событий Anthropic
type streamEvent struct {
	Type    string `json:"type"`
	Message struct {
		Usage struct {
			InputTokens int `json:"input_tokens"`
		} `json:"usage"`
	} `json:"message"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Usage struct {
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// generateStreaming стриминговый запрос: события отдаются приёмнику
// в порядке RequestStarted, MessageStarted, TextDelta*, MessageDelta,
// MessageStopped
func (c *Client) generateStreaming(model, systemPrompt, userPrompt string, sink EventSink) (Result, error) {
	httpReq, err := c.newRequest(apiRequest{
		Model:     model,
		MaxTokens: c.maxTokens,
		System:    systemPrompt,
		Messages:  []apiMessage{{Role: "user", Content: userPrompt}},
		Stream:    true,
	})
	if err != nil {
		return Result{}, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	sink(Event{Kind: EventRequestStarted})

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("запрос к API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Result{}, fmt.Errorf("ошибка API: статус %d: %.200s", resp.StatusCode, string(body))
	}

	var result Result
	var text strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			continue
		}

		switch ev.Type {
		case "message_start":
			result.InputTokens = ev.Message.Usage.InputTokens
			sink(Event{Kind: EventMessageStarted, InputTokens: result.InputTokens})
		case "content_block_delta":
			if ev.Delta.Type == "text_delta" {
				text.WriteString(ev.Delta.Text)
				sink(Event{Kind: EventTextDelta, Chunk: ev.Delta.Text, TotalChars: text.Len()})
			}
		case "message_delta":
			result.OutputTokens = ev.Usage.OutputTokens
			sink(Event{Kind: EventMessageDelta, OutputTokens: result.OutputTokens})
		case "message_stop":
			sink(Event{Kind: EventMessageStopped})
		case "error":
			if ev.Error != nil {
				return Result{}, fmt.Errorf("ошибка API: %s", ev.Error.Message)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Result{}, fmt.Errorf("чтение стрима: %w", err)
	}

	result.Text = text.String()
	if result.Text == "" {
		return Result{}, fmt.Errorf("пустой ответ от API")
	}
	return result, nil
}
