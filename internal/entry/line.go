package entry

import (
	"fmt"
	"strings"
)

// lineEscaper neutralizes bytes that would break the one-entry-per-line file
// format. Backslash is escaped as well so the transformation is reversible.
var lineEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\n", `\n`,
	"\r", `\r`,
	"\f", `\f`,
	"\v", `\v`,
)

// EscapeMessage makes a message safe for line-oriented storage.
func EscapeMessage(message string) string {
	return lineEscaper.Replace(message)
}

// FormatLine renders the entry in the file sink format, newline terminated:
//
//	[<KIND>], {<SEVERITY>}, Activity: <id> Seq: <seq> Parent: <id> -- <message>\n
//
// The message is escaped so the result is always exactly one line.
func FormatLine(e Entry) string {
	return fmt.Sprintf("[%s], {%s}, Activity: %d Seq: %d Parent: %d -- %s\n",
		e.Kind, e.Severity, e.ActivityID, e.Seq, e.ParentID, EscapeMessage(e.Message))
}
