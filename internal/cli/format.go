package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"plancal/internal/model"
)

var (
	// fatih/color detects non-TTY output and drops the escape codes itself.
	successColor  = color.New(color.FgGreen, color.Bold)
	warningColor  = color.New(color.FgYellow, color.Bold)
	conflictColor = color.New(color.FgRed, color.Bold)
	headerColor   = color.New(color.FgBlue, color.Bold)
	valueColor    = color.New(color.FgHiBlack)
	dimColor      = color.New(color.FgHiBlack)
)

// printSuccess prints a success message with a checkmark
func printSuccess(w io.Writer, msg string) {
	_, _ = successColor.Fprintf(w, "✓ %s\n", msg)
}

// printWarning prints a warning message with a warning symbol
func printWarning(w io.Writer, msg string) {
	_, _ = warningColor.Fprintf(w, "⚠ %s\n", msg)
}

func printConflict(w io.Writer, msg string) {
	_, _ = conflictColor.Fprintf(w, "✗ %s\n", msg)
}

func printEmptyState(w io.Writer, msg string) {
	_, _ = dimColor.Fprintf(w, "  %s\n", msg)
}

// printTable prints rows under a colored header, columns padded to the
// widest cell.
func printTable(w io.Writer, headers []string, rows [][]string) {
	if len(headers) == 0 || len(rows) == 0 {
		return
	}

	colWidths := make([]int, len(headers))
	for i, header := range headers {
		colWidths[i] = len(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(colWidths) && len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	fmt.Fprint(w, "  ")
	for i, header := range headers {
		if i > 0 {
			fmt.Fprint(w, "  ")
		}
		_, _ = headerColor.Fprintf(w, "%-*s", colWidths[i], header)
	}
	fmt.Fprintln(w)

	fmt.Fprint(w, "  ")
	for i, width := range colWidths {
		if i > 0 {
			fmt.Fprint(w, "  ")
		}
		fmt.Fprint(w, strings.Repeat("-", width))
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		fmt.Fprint(w, "  ")
		for i, cell := range row {
			if i >= len(colWidths) {
				break
			}
			if i > 0 {
				fmt.Fprint(w, "  ")
			}
			_, _ = valueColor.Fprintf(w, "%-*s", colWidths[i], cell)
		}
		fmt.Fprintln(w)
	}
}

// eventRow renders the columns shared by the event listings.
func eventRow(ev model.PlanningEvent) []string {
	repeat := "once"
	if ev.Recurring {
		repeat = fmt.Sprintf("every %dw", ev.WeeksPeriod)
	}
	return []string{
		ev.ID,
		ev.StartDate.String(),
		ev.EndDate.String(),
		fmt.Sprintf("%s-%s", ev.StartTime, ev.EndTime),
		repeat,
		ev.Title,
	}
}

var eventHeaders = []string{"ID", "START", "END", "TIME", "REPEAT", "TITLE"}

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// countLabel returns "1 event" / "3 events".
func countLabel(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}
