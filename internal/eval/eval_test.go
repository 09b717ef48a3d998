package eval

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"document-qa/internal/models"
)

type stubPipeline struct {
	asked []string
}

func (s *stubPipeline) Ask(ctx context.Context, question string) models.Response {
	s.asked = append(s.asked, question)
	return models.Response{Answer: "answer to " + question, Confidence: 0.9}
}

func writeQuestions(t *testing.T, path string, questions ...string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetList()[0]
	require.NoError(t, f.SetCellValue(sheet, "A1", "Questions"))
	for i, q := range questions {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, q))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "questions.xlsx")
	out := filepath.Join(dir, "results.xlsx")
	writeQuestions(t, in, "what is the price?", "", "which plans exist?")

	pipeline := &stubPipeline{}
	require.NoError(t, Run(context.Background(), pipeline, in, out))
	assert.Equal(t, []string{"what is the price?", "which plans exist?"}, pipeline.asked)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetList()[0]

	header, err := f.GetCellValue(sheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Answer", header)

	answer, err := f.GetCellValue(sheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "answer to what is the price?", answer)

	// Blank question row gets empty results, not a pipeline call.
	blank, err := f.GetCellValue(sheet, "B3")
	require.NoError(t, err)
	assert.Empty(t, blank)
}

func TestRun_MissingQuestionColumn(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]
	require.NoError(t, f.SetCellValue(sheet, "A1", "NotQuestions"))
	require.NoError(t, f.SaveAs(in))
	f.Close()

	err := Run(context.Background(), &stubPipeline{}, in, filepath.Join(dir, "out.xlsx"))
	assert.Error(t, err)
}
