package formatter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/altmm/altmm/internal/dedup"
)

var (
	countStyle          = color.New(color.FgCyan, color.Bold)
	headerStyle         = color.New(color.FgYellow, color.Bold)
	representativeStyle = color.New(color.FgGreen, color.Bold)
	memberStyle         = color.New(color.FgWhite)
	separatorStyle      = color.New(color.FgHiBlue)
	summaryStyle        = color.New(color.FgHiBlue, color.Bold)
)

// GenerateFormattedReport renders a report for the terminal. Without colors
// the text is the report text followed by a newline.
func GenerateFormattedReport(r *dedup.Report) string {
	var builder strings.Builder

	builder.WriteString(countStyle.Sprintf("Axiom and definition count %d", r.AxiomCount))
	builder.WriteString("\n\n")
	builder.WriteString(headerStyle.Sprint(r.Header()))
	builder.WriteString("\n")

	for _, group := range r.Groups {
		builder.WriteString(formatGroup(group))
		builder.WriteString("\n")
	}

	builder.WriteString("\n")
	builder.WriteString(summaryStyle.Sprintf("Unique assertions which are repeated: %d", r.UniqueRepeated))
	builder.WriteString("\n")
	builder.WriteString(summaryStyle.Sprintf("Total assertions which are repeated: %d", r.TotalRepeated))
	builder.WriteString("\n")
	return builder.String()
}

func formatGroup(group []string) string {
	var builder strings.Builder
	for i, label := range group {
		if i == 0 {
			builder.WriteString(representativeStyle.Sprint(label))
			continue
		}
		builder.WriteString(separatorStyle.Sprint(", "))
		builder.WriteString(memberStyle.Sprint(label))
	}
	return builder.String()
}

type jsonReport struct {
	AxiomCount     int        `json:"axiomCount"`
	Groups         [][]string `json:"groups"`
	UniqueRepeated int        `json:"uniqueRepeated"`
	TotalRepeated  int        `json:"totalRepeated"`
}

// GenerateJSONReport renders a report as JSON.
func GenerateJSONReport(r *dedup.Report) ([]byte, error) {
	groups := r.Groups
	if groups == nil {
		groups = [][]string{}
	}
	d, err := json.Marshal(jsonReport{
		AxiomCount:     r.AxiomCount,
		Groups:         groups,
		UniqueRepeated: r.UniqueRepeated,
		TotalRepeated:  r.TotalRepeated,
	})
	if err != nil {
		return nil, fmt.Errorf("marshalling report: %w", err)
	}
	return d, nil
}
