package prompt

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// LabelLength is the number of prompt runes shown in a history label.
const LabelLength = 35

// Compose joins a style prefix and a user prompt into the prompt sent to the
// image API. Both parts are trimmed; an empty style leaves the prompt as is.
func Compose(style, prompt string) string {
	style, prompt = strings.TrimSpace(style), strings.TrimSpace(prompt)
	if style == "" {
		return prompt
	}
	return style + " " + prompt
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Label formats the history list entry for the n-th generation of the session.
// The ellipsis is always appended, even for short prompts. Line breaks become
// spaces so the label stays on one row.
func Label(n int, original string) string {
	return fmt.Sprintf("[%d] %s...", n, lo.Substring(lineBreaks.Replace(original), 0, LabelLength))
}
