package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"lead-extract-eval/internal/aggregator"
	"lead-extract-eval/internal/extractor"
	"lead-extract-eval/internal/runner"
	"lead-extract-eval/internal/types"
)

func TestWriteWorkbook(t *testing.T) {
	res := types.ComparisonResult{
		{Field: types.FieldFirstName, Match: true},
		{Field: types.FieldLastName, Match: false},
	}
	reports := []runner.ModelReport{{
		Model:   "gpt-4.1-mini",
		Prompt:  "v1",
		Summary: aggregator.Aggregate([]types.ComparisonResult{res}),
		Usage:   extractor.Usage{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120},
		Conversations: []runner.ConversationResult{
			{ChatID: "c1", Result: res, LatencyMs: 42},
			{ChatID: "c2", Skipped: true, Error: "missing ground truth"},
		},
	}}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteWorkbook(path, reports))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet, FieldsSheet, ConversationsSheet}, f.GetSheetList())

	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "model", rows[0][0])
	assert.Equal(t, "gpt-4.1-mini", rows[1][0])
	assert.Equal(t, "0.5", rows[1][7])

	rows, err = f.GetRows(FieldsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, types.FieldFirstName, rows[1][2])
	assert.Equal(t, types.FieldLastName, rows[2][2])

	rows, err = f.GetRows(ConversationsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "c1", rows[1][2])
	assert.Equal(t, "1", rows[1][5])
	assert.Equal(t, "42", rows[1][6])
	assert.Equal(t, "missing ground truth", rows[2][4])
}
