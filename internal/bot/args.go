package bot

import (
	"strings"
	"unicode"
)

// splitArgs separates the first word of a command's arguments from the
// rest. The remainder keeps its inner formatting (newlines included).
func splitArgs(args string) (first, rest string) {
	args = strings.TrimSpace(args)
	i := strings.IndexFunc(args, unicode.IsSpace)
	if i < 0 {
		return args, ""
	}
	return args[:i], strings.TrimSpace(args[i:])
}
