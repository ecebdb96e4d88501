package attachment

import "strings"

// filenameReplacer maps every reserved character to '~'.
var filenameReplacer = strings.NewReplacer(
	"/", "~",
	`\`, "~",
	":", "~",
	"*", "~",
	"?", "~",
	"'", "~",
	"<", "~",
	">", "~",
	"|", "~",
)

// SanitizeFilename returns name with the characters / \ : * ? ' < > |
// replaced by '~'. It never fails and leaves clean names untouched.
func SanitizeFilename(name string) string {
	return filenameReplacer.Replace(name)
}
