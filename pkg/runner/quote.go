package runner

import "strings"

// singleQuote wraps a string in single quotes, escaping any embedded single quotes.
func singleQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}

// commandLine renders argv as a single shell command line for a remote
// shell, quoting every argument.
func commandLine(argv []string) string {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		quoted[i] = singleQuote(arg)
	}
	return strings.Join(quoted, " ")
}
