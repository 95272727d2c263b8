package reporting

import (
	"fmt"
	"strings"

	"trading-audit-lab/internal/domain"
)

// RenderCSV renders findings as a CSV string.
// Notes are joined by "; " into a single column.
func RenderCSV(findings []domain.AuditFinding) string {
	var sb strings.Builder

	// Header
	sb.WriteString("ID,Audit Area,Component,Status,Score,Notes\n")

	// Rows
	for _, f := range findings {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%.1f,%s\n",
			csvField(f.ID),
			csvField(f.Area.Label()),
			csvField(f.Component),
			csvField(string(f.Status)),
			f.Score,
			csvField(strings.Join(f.Notes, "; ")),
		))
	}

	return sb.String()
}

// csvField quotes a value when it contains a delimiter, quote or newline.
func csvField(v string) string {
	if !strings.ContainsAny(v, ",\"\n") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
