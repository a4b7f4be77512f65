package lint

import (
	"log/slog"
	"sort"
	"strings"
)

// Engine analyzes source text against per-language rule profiles. The zero
// cost of construction means one Engine can be shared by concurrent callers;
// it holds no mutable state.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an engine. A nil logger falls back to slog.Default().
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Analyze runs the profile selected by filename over source and returns the
// findings ordered by line then column. Analysis is best-effort: an internal
// panic is logged and yields zero findings, so one bad file cannot abort a
// whole run.
func (e *Engine) Analyze(filename, source string) (findings []Finding) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("static analysis panicked, dropping findings for file",
				"file", filename, "panic", r)
			findings = nil
		}
	}()

	if strings.TrimSpace(source) == "" {
		return nil
	}

	prof := profileForFilename(filename)
	lines := strings.Split(source, "\n")

	for _, rule := range prof.rules {
		findings = append(findings, rule.apply(lines)...)
	}
	for _, check := range prof.checks {
		findings = append(findings, check(lines)...)
	}

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Line != findings[j].Line {
			return findings[i].Line < findings[j].Line
		}
		return findings[i].Column < findings[j].Column
	})
	return findings
}
