package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// newSheet creates a workbook whose first sheet is named name and carries a bold header row
func newSheet(name string, header []any) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", name); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetCellStyle(name, "A1", last+"1", style); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetPanes(name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func messagesWorkbook(messages []*models.ContactMessage) (*excelize.File, error) {
	const sheet = "Messages"
	f, err := newSheet(sheet, []any{"Received", "Name", "Email", "Subject", "Message", "Read"})
	if err != nil {
		return nil, err
	}

	rows := make([][]any, 0, len(messages))
	for _, m := range messages {
		rows = append(rows, []any{m.CreatedAt.UTC().Format(time.RFC3339), m.Name, m.Email, m.Subject, m.Message, m.Read})
	}
	if err := setRows(f, sheet, rows); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func analyticsWorkbook(events []*models.AnalyticsEvent) (*excelize.File, error) {
	const sheet = "PageViews"
	f, err := newSheet(sheet, []any{"Time", "Page", "Visitor", "Referrer", "User Agent"})
	if err != nil {
		return nil, err
	}

	rows := make([][]any, 0, len(events))
	for _, e := range events {
		rows = append(rows, []any{e.CreatedAt.UTC().Format(time.RFC3339), e.PagePath, e.VisitorID, deref(e.Referrer), deref(e.UserAgent)})
	}
	if err := setRows(f, sheet, rows); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// writeWorkbook sends f as an attachment and closes it
func writeWorkbook(w http.ResponseWriter, logger zerolog.Logger, filename string, f *excelize.File) {
	defer f.Close()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	if _, err := f.WriteTo(w); err != nil {
		logger.Error().Err(err).Str("filename", filename).Msg("Failed to write workbook")
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
