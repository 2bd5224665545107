// Package gsheets внешний приёмник и источник: запись недельного
// плана в Google Sheets и чтение залогированных сессий обратно.
package gsheets

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"fortbot/internal/models"
)

// Client клиент для работы с одной таблицей Google Sheets
type Client struct {
	sheets        *sheets.Service
	spreadsheetID string
}

// NewClient создаёт клиент по сервисному аккаунту
func NewClient(credentialsPath, spreadsheetID string) (*Client, error) {
	ctx := context.Background()

	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать credentials: %w", err)
	}

	config, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("ошибка конфигурации: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Sheets сервиса: %w", err)
	}

	return &Client{sheets: srv, spreadsheetID: spreadsheetID}, nil
}

// WritePlan записывает строки плана на лист, создавая его при
// надобности. Первая строка — схема из 8 колонок
func (c *Client) WritePlan(sheetName string, rows [][]string) error {
	ctx := context.Background()

	sheetID, err := c.ensureSheet(ctx, sheetName)
	if err != nil {
		return err
	}

	clearRange := fmt.Sprintf("'%s'!A:H", sheetName)
	if _, err := c.sheets.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("очистка листа: %w", err)
	}

	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		cells := make([]interface{}, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		values = append(values, cells)
	}

	writeRange := fmt.Sprintf("'%s'!A1", sheetName)
	_, err = c.sheets.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("запись плана: %w", err)
	}

	c.formatHeader(ctx, sheetID)
	return nil
}

// ListSheetTitles названия всех листов таблицы
func (c *Client) ListSheetTitles() ([]string, error) {
	ctx := context.Background()
	resp, err := c.sheets.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("чтение списка листов: %w", err)
	}
	titles := make([]string, 0, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

// Session залогированная секция одного дня с листа
type Session struct {
	DayLabel string
	Entries  []models.SyncEntry
}

// ReadSessions читает лист обратно: маркерные строки с меткой дня в
// первой ячейке открывают секцию, строки из 8 колонок под ними —
// записи упражнений
func (c *Client) ReadSessions(sheetName string) ([]Session, error) {
	ctx := context.Background()
	readRange := fmt.Sprintf("'%s'!A:H", sheetName)
	resp, err := c.sheets.Spreadsheets.Values.Get(c.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("чтение листа: %w", err)
	}

	var sessions []Session
	var current *Session

	for _, raw := range resp.Values {
		row := stringRow(raw, 8)
		if isSchemaRow(row) {
			continue
		}
		if isMarkerRow(row) {
			if current != nil {
				sessions = append(sessions, *current)
			}
			current = &Session{DayLabel: row[0]}
			continue
		}
		if current == nil || strings.TrimSpace(row[1]) == "" {
			continue
		}
		current.Entries = append(current.Entries, models.SyncEntry{
			Block:    row[0],
			Exercise: row[1],
			Sets:     row[2],
			Reps:     row[3],
			Load:     row[4],
			Rest:     row[5],
			Notes:    row[6],
			Log:      row[7],
		})
	}
	if current != nil {
		sessions = append(sessions, *current)
	}
	return sessions, nil
}

// ensureSheet находит лист по названию или создаёт его
func (c *Client) ensureSheet(ctx context.Context, sheetName string) (int64, error) {
	resp, err := c.sheets.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("чтение таблицы: %w", err)
	}
	for _, sh := range resp.Sheets {
		if sh.Properties != nil && sh.Properties.Title == sheetName {
			return sh.Properties.SheetId, nil
		}
	}

	add := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: sheetName},
			},
		}},
	}
	created, err := c.sheets.Spreadsheets.BatchUpdate(c.spreadsheetID, add).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("создание листа %q: %w", sheetName, err)
	}
	for _, rep := range created.Replies {
		if rep.AddSheet != nil && rep.AddSheet.Properties != nil {
			return rep.AddSheet.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("создание листа %q: пустой ответ", sheetName)
}

// formatHeader форматирует строку схемы (жирный шрифт, цвет фона)
func (c *Client) formatHeader(ctx context.Context, sheetID int64) {
	requests := []*sheets.Request{{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				SheetId:          sheetID,
				StartRowIndex:    0,
				EndRowIndex:      1,
				StartColumnIndex: 0,
				EndColumnIndex:   8,
			},
			Cell: &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{
					BackgroundColor: &sheets.Color{Red: 0.2, Green: 0.4, Blue: 0.8},
					TextFormat: &sheets.TextFormat{
						Bold:            true,
						ForegroundColor: &sheets.Color{Red: 1, Green: 1, Blue: 1},
					},
				},
			},
			Fields: "userEnteredFormat(backgroundColor,textFormat)",
		},
	}}

	_, err := c.sheets.Spreadsheets.BatchUpdate(c.spreadsheetID,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
	if err != nil {
		log.Printf("Ошибка форматирования: %v", err)
	}
}

// stringRow приводит строку листа к фиксированной ширине
func stringRow(raw []interface{}, width int) []string {
	out := make([]string, width)
	for i := 0; i < width && i < len(raw); i++ {
		out[i] = fmt.Sprintf("%v", raw[i])
	}
	return out
}

// isMarkerRow маркер дня: заполнена только первая ячейка
func isMarkerRow(row []string) bool {
	if strings.TrimSpace(row[0]) == "" {
		return false
	}
	for _, cell := range row[1:] {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// isSchemaRow строка схемы листа
func isSchemaRow(row []string) bool {
	return row[0] == "Block" && row[1] == "Exercise"
}

// SpreadsheetURL возвращает URL таблицы
func SpreadsheetURL(spreadsheetID string) string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s", spreadsheetID)
}
