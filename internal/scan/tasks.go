package scan

import (
	"regexp"
	"strings"
)

// taskPattern matches a numbered list item written as a div line in ENML,
// e.g. "<div>3. call the bank\n". It is case and whitespace sensitive.
// The task text stops at any line terminator, so a line ending in "\r\n"
// does not match. The optional whitespace before the dot includes \v.
var taskPattern = regexp.MustCompile(`<div>\d+[\t\n\v\f\r ]?\.([^\r\n\x{85}\x{2028}\x{2029}]*)\n`)

// markupPattern strips ENML tags left in a task's text, e.g. a closing </div>.
var markupPattern = regexp.MustCompile(`<[^>]*>`)

// CountTasks returns the number of non-overlapping task matches in content.
func CountTasks(content string) int {
	return len(taskPattern.FindAllStringIndex(content, -1))
}

// FindTasks returns the text of every task in content, in order, with markup
// removed. It returns exactly CountTasks(content) entries.
func FindTasks(content string) []string {
	matches := taskPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}
	tasks := make([]string, 0, len(matches))
	for _, m := range matches {
		tasks = append(tasks, strings.TrimSpace(markupPattern.ReplaceAllString(m[1], "")))
	}
	return tasks
}

// TaskPattern returns the regular expression task lines are matched with.
func TaskPattern() string {
	return taskPattern.String()
}
