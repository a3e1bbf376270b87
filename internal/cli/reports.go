package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/slidekit/pkg/pipeline"
	"github.com/matzehuels/slidekit/pkg/qc"
)

const (
	levelFatal   = "fatal"
	levelWarning = "warning"
)

// finding is one row of the gate table.
type finding struct {
	gate    string
	level   string
	message string
}

// findings flattens reports in gate order. Render gates are labeled with
// their format.
func findings(r pipeline.Reports, formats []string) []finding {
	var out []finding
	add := func(label string, rep *qc.Report) {
		if rep == nil {
			return
		}
		if rep.Fatal != "" {
			out = append(out, finding{label, levelFatal, rep.Fatal})
		}
		for _, w := range rep.Warnings {
			out = append(out, finding{label, levelWarning, w})
		}
	}
	add(qc.GateDefinition.String(), r.Definition)
	add(qc.GateLayout.String(), r.Layout)
	for _, f := range formats {
		if rep, ok := r.Render[f]; ok {
			add(fmt.Sprintf("%s (%s)", qc.GateRender, f), &rep)
		}
	}
	return out
}

// reportTable renders findings as a bordered table; empty when there are
// none.
func reportTable(rows []finding) string {
	if len(rows) == 0 {
		return ""
	}
	cells := make([][]string, len(rows))
	for i, f := range rows {
		cells[i] = []string{f.gate, f.level, f.message}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Gate", "Level", "Finding").
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if col != 1 || row >= len(rows) {
				return base
			}
			if rows[row].level == levelFatal {
				return base.Foreground(colorRed).Bold(true)
			}
			return base.Foreground(colorYellow)
		})
	return t.Render()
}

// printReports prints the gate findings of a run, or a single line when
// every gate came back clean.
func printReports(r pipeline.Reports, formats []string) {
	rows := findings(r, formats)
	if len(rows) == 0 {
		printSuccess("All quality gates passed")
		return
	}
	fmt.Println(reportTable(rows))
	printDetail("%s", summarize(rows))
}

func summarize(rows []finding) string {
	var fatal, warn int
	for _, f := range rows {
		if f.level == levelFatal {
			fatal++
		} else {
			warn++
		}
	}
	parts := []string{plural(warn, "warning")}
	if fatal > 0 {
		parts = append([]string{plural(fatal, "fatal finding")}, parts...)
	}
	return strings.Join(parts, ", ")
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
