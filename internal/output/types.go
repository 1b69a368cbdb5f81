package output

import "time"

const (
	FormatMarkdown = "md"
	FormatText     = "txt"
	FormatDocx     = "docx"
)

// Document is the final text of one processed input.
type Document struct {
	Title  string
	Text   string
	Report Report
}

// Report summarizes a run for later inspection.
type Report struct {
	Source    string         `yaml:"source"`
	Title     string         `yaml:"title"`
	StartedAt time.Time      `yaml:"started_at"`
	Duration  time.Duration  `yaml:"duration"`
	Mode      string         `yaml:"mode"`
	Chunks    int            `yaml:"chunks"`
	Succeeded int            `yaml:"succeeded"`
	Failed    []int          `yaml:"failed,omitempty"`
	Skipped   []int          `yaml:"skipped,omitempty"`
	Backends  map[string]int `yaml:"backends,omitempty"`
	Usage     map[string]int `yaml:"usage,omitempty"`
	Aborted   bool           `yaml:"aborted"`
	Error     string         `yaml:"error,omitempty"`
	Outputs   []string       `yaml:"outputs,omitempty"`
}
