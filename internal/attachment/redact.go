package attachment

import "strings"

// Redact replaces the span of every block with Placeholder, keeping all
// other text verbatim and in order. blocks must come from a single Scan
// of message; spans that are out of order or out of range are skipped.
func Redact(message string, blocks []Block) string {
	if len(blocks) == 0 {
		return message
	}

	var b strings.Builder
	b.Grow(len(message))

	cursor := 0
	for _, block := range blocks {
		span := block.Span
		if span.Start < cursor || span.Len() < 0 || span.End > len(message) {
			continue
		}
		b.WriteString(message[cursor:span.Start])
		b.WriteString(Placeholder)
		cursor = span.End
	}
	b.WriteString(message[cursor:])

	return b.String()
}

// ScanAndRedact scans message and redacts every block found. A scan
// error is returned alongside the partial result; text from the
// malformed block onward is left as is.
func ScanAndRedact(message string) (string, []Block, error) {
	blocks, err := Scan(message)
	return Redact(message, blocks), blocks, err
}
