// internal/workers/assistant/analyze-csv/parser.go
package analyzecsv

import "strings"

// splitLines breaks the raw content into non-empty trimmed lines.
func splitLines(content string) []string {
	raw := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// parseLine splits one record into fields. Comma and semicolon both act as
// separators, and double quotes suppress delimiter interpretation; a doubled
// quote inside a quoted field is a literal quote.
func parseLine(line string) []string {
	var fields []string
	var field strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				field.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case (c == ',' || c == ';') && !inQuotes:
			fields = append(fields, strings.TrimSpace(field.String()))
			field.Reset()
		default:
			field.WriteRune(c)
		}
	}
	fields = append(fields, strings.TrimSpace(field.String()))
	return fields
}
