package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"video-translator/domain/batch"

	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	previewLength = 100
	detailLength  = 60
)

// printSummary renders the per-file table and the batch totals
func printSummary(out OutputWriter, report *batch.BatchReport) {
	if report == nil || report.NoFilesFound {
		return
	}
	color := shouldColorize(out)

	rows := make([][]string, 0, report.Len())
	for i, o := range report.Outcomes {
		stage := ""
		if o.Status.Failed() {
			stage = string(o.FailedStage)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			filepath.Base(o.SourceFile),
			colorize(string(o.Status), statusColors(o.Status), color),
			stage,
			truncate(o.ErrorDetail, detailLength),
			o.Duration.Round(time.Second).String(),
		})
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(
		[]string{"#", "File", "Status", "Stage", "Detail", "Duration"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	))

	if report.Preview() {
		printPreview(out, report)
	}

	fmt.Fprintf(out, "Succeeded: %s  Failed: %s  Total: %d  (%s)\n",
		colorize(strconv.Itoa(report.Succeeded()), text.Colors{text.FgGreen}, color),
		colorize(strconv.Itoa(report.Failed()), failedColors(report.Failed()), color),
		report.Len(),
		report.Duration().Round(time.Second),
	)
	if report.Preview() {
		fmt.Fprintln(out, "Preview mode: no files were saved")
	} else {
		fmt.Fprintf(out, "Results saved in %s\n", report.OutputDir)
	}
	fmt.Fprintf(out, "Run ID: %s\n", report.RunID)
}

// printPreview shows a short sample of every result, since nothing was written
func printPreview(out OutputWriter, report *batch.BatchReport) {
	for _, o := range report.Outcomes {
		if o.Transcript == nil {
			continue
		}
		fmt.Fprintf(out, "%s\n", filepath.Base(o.SourceFile))
		fmt.Fprintf(out, "  transcript:  %s\n", truncate(o.Transcript.RawText, previewLength))
		if o.Translation != nil {
			fmt.Fprintf(out, "  translation: %s\n", truncate(o.Translation.TranslatedText, previewLength))
		}
	}
	fmt.Fprintln(out)
}

// printReportJSON writes the full report for machine consumption
func printReportJSON(out OutputWriter, report *batch.BatchReport) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

func statusColors(s batch.Status) text.Colors {
	switch s {
	case batch.StatusSuccess:
		return text.Colors{text.FgGreen}
	case batch.StatusWriteFailed:
		return text.Colors{text.FgYellow}
	default:
		return text.Colors{text.FgRed}
	}
}

func failedColors(n int) text.Colors {
	if n == 0 {
		return nil
	}
	return text.Colors{text.FgRed}
}

// truncate shortens s to n runes on a single line
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
