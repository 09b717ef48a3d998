// Package eval runs a batch of questions from an xlsx sheet through the
// pipeline and writes answers, confidences and latencies back out.
package eval

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"document-qa/internal/models"
)

const questionHeader = "Questions"

// Asker is the slice of the pipeline the evaluator needs.
type Asker interface {
	Ask(ctx context.Context, question string) models.Response
}

// Run reads the Questions column from the first sheet of inPath, asks
// each question and writes Answer, Confidence and Latency_sec columns
// alongside it to outPath.
func Run(ctx context.Context, pipeline Asker, inPath, outPath string) error {
	f, err := excelize.OpenFile(inPath)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("workbook has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("sheet is empty")
	}

	questionCol := -1
	for i, cell := range rows[0] {
		if strings.TrimSpace(cell) == questionHeader {
			questionCol = i
			break
		}
	}
	if questionCol < 0 {
		return fmt.Errorf("sheet must contain a column named %q", questionHeader)
	}

	outCol := len(rows[0])
	if err := writeRow(f, sheet, outCol, 1, "Answer", "Confidence", "Latency_sec"); err != nil {
		return err
	}

	for i, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return err
		}

		var question string
		if questionCol < len(row) {
			question = strings.TrimSpace(row[questionCol])
		}
		rowNum := i + 2
		if question == "" {
			if err := writeRow(f, sheet, outCol, rowNum, "", 0.0, 0.0); err != nil {
				return err
			}
			continue
		}

		log.Info().Str("question", question).Msg("Evaluating")
		start := time.Now()
		resp := pipeline.Ask(ctx, question)
		latency := math.Round(time.Since(start).Seconds()*1000) / 1000

		if err := writeRow(f, sheet, outCol, rowNum, resp.Answer, resp.Confidence, latency); err != nil {
			return err
		}
	}

	if err := f.SaveAs(outPath); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	log.Info().Str("path", outPath).Msg("Saved evaluation results")
	return nil
}

func writeRow(f *excelize.File, sheet string, startCol, row int, values ...any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(startCol+i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
