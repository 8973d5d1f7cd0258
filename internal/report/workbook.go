// Package report writes evaluation results to an xlsx workbook.
package report

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
	"lead-extract-eval/internal/runner"
	"lead-extract-eval/internal/types"
)

// Sheet names.
const (
	SummarySheet       = "summary"
	FieldsSheet        = "fields"
	ConversationsSheet = "conversations"
)

// WriteWorkbook writes one row per model report to the summary sheet,
// per-field accuracy to the fields sheet and per-conversation matches to
// the conversations sheet.
func WriteWorkbook(path string, reports []runner.ModelReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{FieldsSheet, ConversationsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	w := sheetWriter{f: f}
	w.row(SummarySheet, "model", "prompt", "conversations", "skipped", "correct", "incorrect", "total",
		"accuracy", "extraction_errors", "prompt_tokens", "completion_tokens", "total_tokens", "avg_latency_ms")
	w.row(FieldsSheet, "model", "prompt", "field", "correct", "total", "accuracy")
	convHeader := []any{"model", "prompt", "chat_id", "skipped", "error", "correct", "latency_ms"}
	for _, field := range types.CanonicalFields {
		convHeader = append(convHeader, field)
	}
	w.row(ConversationsSheet, convHeader...)

	for _, rep := range reports {
		s := rep.Summary
		w.row(SummarySheet, rep.Model, rep.Prompt, s.Conversations, s.Skipped, s.Correct, s.Incorrect, s.Total,
			s.Accuracy, rep.ExtractionErrors, rep.Usage.PromptTokens, rep.Usage.CompletionTokens, rep.Usage.TotalTokens, rep.AvgLatencyMs)

		fields := make([]string, 0, len(s.Fields))
		for name := range s.Fields {
			fields = append(fields, name)
		}
		sort.Slice(fields, func(i, j int) bool { return fieldOrder(fields[i]) < fieldOrder(fields[j]) })
		for _, name := range fields {
			fs := s.Fields[name]
			w.row(FieldsSheet, rep.Model, rep.Prompt, name, fs.Correct, fs.Total, fs.Accuracy)
		}

		for _, c := range rep.Conversations {
			row := []any{rep.Model, rep.Prompt, c.ChatID, c.Skipped, c.Error, c.Result.Correct(), c.LatencyMs}
			matches := c.Result.AsMap()
			for _, field := range types.CanonicalFields {
				if m, ok := matches[field]; ok {
					row = append(row, m)
				} else {
					row = append(row, "")
				}
			}
			w.row(ConversationsSheet, row...)
		}
	}
	if w.err != nil {
		return w.err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// sheetWriter appends rows and keeps the first error.
type sheetWriter struct {
	f    *excelize.File
	next map[string]int
	err  error
}

func (w *sheetWriter) row(sheet string, values ...any) {
	if w.err != nil {
		return
	}
	if w.next == nil {
		w.next = map[string]int{}
	}
	w.next[sheet]++
	cell, err := excelize.CoordinatesToCellName(1, w.next[sheet])
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
		w.err = fmt.Errorf("write %s row %d: %w", sheet, w.next[sheet], err)
	}
}

func fieldOrder(field string) int {
	for i, f := range types.CanonicalFields {
		if f == field {
			return i
		}
	}
	return len(types.CanonicalFields)
}
