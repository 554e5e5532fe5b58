// Package marker detects the trigger token inside file contents.
//
// A file triggers a dispatch when it contains the literal token "claude!"
// anywhere in its text. The remainder of the line after the first token
// occurrence is extracted as free-text instruction. The instruction is
// informational: the dispatched command always receives a templated
// sentence referencing the file path, not the raw instruction text.
//
// Example usage:
//
//	m := marker.Scan("notes\nclaude! summarize this\nmore")
//	// m.Found == true, m.Instruction == "summarize this"
package marker

import "strings"

// Token is the literal marker that signals a pending instruction.
const Token = "claude!"

// Match is the result of scanning file contents for the marker.
//
// Match is derived fresh on every scan and never cached: file content can
// change between events, so content at read time is authoritative.
type Match struct {
	// Found reports whether the token occurs in the content.
	Found bool

	// Instruction is the trimmed remainder of the line after the first
	// token occurrence. May be empty even when Found is true.
	Instruction string
}

// Scan searches content for the first occurrence of the marker token.
//
// Only the first occurrence matters; a file may contain the token several
// times but only the first line is inspected. Scanning the same content
// repeatedly always yields the same Match.
func Scan(content string) Match {
	idx := strings.Index(content, Token)
	if idx < 0 {
		return Match{}
	}

	rest := content[idx+len(Token):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}

	return Match{
		Found:       true,
		Instruction: strings.TrimSpace(rest),
	}
}

// Contains reports whether content holds the marker token at all.
func Contains(content string) bool {
	return strings.Contains(content, Token)
}
