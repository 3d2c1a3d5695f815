// Package textproc rewrites note text for the assistant feature.
package textproc

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
)

// Task selects a rewrite.
type Task string

// Supported tasks.
const (
	TaskSummarize Task = "summarize"
	TaskBullets   Task = "bullets"
	TaskUppercase Task = "uppercase"
	TaskLowercase Task = "lowercase"
	TaskTidy      Task = "tidy"
)

// Tasks lists every supported task.
var Tasks = []Task{TaskSummarize, TaskBullets, TaskUppercase, TaskLowercase, TaskTidy}

// ParseTask validates a task name.
func ParseTask(s string) (Task, error) {
	for _, t := range Tasks {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("validation: unknown task %q: %w", s, errs.ErrInvalid)
}

// Processor rewrites text. Implementations may call remote services and may fail.
type Processor interface {
	Process(ctx context.Context, text string, task Task) (string, error)
}

// Local is an offline Processor.
type Local struct {
	// SummaryLen caps summaries in sentences; zero means 2.
	SummaryLen int
}

// NewLocal returns an offline processor.
func NewLocal() *Local { return &Local{SummaryLen: 2} }

// Process applies task to text.
func (l *Local) Process(ctx context.Context, text string, task Task) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch task {
	case TaskUppercase:
		return strings.ToUpper(text), nil
	case TaskLowercase:
		return strings.ToLower(text), nil
	case TaskTidy:
		return Tidy(text), nil
	case TaskBullets:
		return bullets(text), nil
	case TaskSummarize:
		n := l.SummaryLen
		if n <= 0 {
			n = 2
		}
		return summarize(text, n), nil
	default:
		return "", fmt.Errorf("validation: unknown task %q: %w", task, errs.ErrInvalid)
	}
}

// Tidy trims every line, collapses inner runs of spaces and keeps at most one blank line in a row.
func Tidy(text string) string {
	var out []string
	blank := false
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if blank || len(out) == 0 {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

func bullets(text string) string {
	var items []string
	for _, line := range strings.Split(Tidy(text), "\n") {
		if line == "" {
			continue
		}
		line = strings.TrimLeft(line, "-*• ")
		if line != "" {
			items = append(items, "- "+line)
		}
	}
	return strings.Join(items, "\n")
}

func summarize(text string, n int) string {
	s := sentences(strings.Join(strings.Fields(text), " "))
	if len(s) > n {
		s = s[:n]
	}
	return strings.Join(s, " ")
}

func sentences(text string) []string {
	var out []string
	start := 0
	rs := []rune(text)
	for i, r := range rs {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(rs) && !unicode.IsSpace(rs[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(rs[start : i+1])); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(rs[start:])); s != "" {
		out = append(out, s)
	}
	return out
}
