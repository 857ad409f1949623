package singbox

import (
	"bufio"
	"strings"
)

// SplitLines breaks pasted or fetched text into trimmed, non-blank lines.
func SplitLines(text string) []string {
	var lines []string
	text = strings.ReplaceAll(text, "\r\n", "\n")
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// IsSubscription reports whether line points at a remote subscription list
// rather than being a share link itself.
func IsSubscription(line string) bool {
	l := strings.ToLower(strings.TrimSpace(line))
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// Dedupe drops repeated lines, keeping the first occurrence.
func Dedupe(input []string) []string {
	keys := make(map[string]bool)
	list := []string{}
	for _, entry := range input {
		if _, value := keys[entry]; !value {
			keys[entry] = true
			list = append(list, entry)
		}
	}
	return list
}
