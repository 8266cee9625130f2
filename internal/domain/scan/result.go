package scan

import (
	"errors"
	"time"
)

// Result is the aggregate of all findings for one scan invocation.
// It is populated once by Assemble and read-only afterwards.
type Result struct {
	target      string
	startedAt   time.Time
	completedAt time.Time
	sections    map[Category][]Finding
}

// Assemble builds a result from per-section findings. Every section in
// Sections is present afterwards, empty when the probe reported nothing.
func Assemble(target string, startedAt, completedAt time.Time, sections map[Category][]Finding) (*Result, error) {
	if target == "" {
		return nil, errors.New("target cannot be empty")
	}

	r := &Result{
		target:      target,
		startedAt:   startedAt,
		completedAt: completedAt,
		sections:    make(map[Category][]Finding, len(Sections)),
	}
	for _, section := range Sections {
		findings := sections[section]
		copied := make([]Finding, len(findings))
		copy(copied, findings)
		r.sections[section] = copied
	}

	return r, nil
}

// Getters

func (r *Result) Target() string {
	return r.target
}

func (r *Result) StartedAt() time.Time {
	return r.startedAt
}

func (r *Result) CompletedAt() time.Time {
	return r.completedAt
}

func (r *Result) Duration() time.Duration {
	return r.completedAt.Sub(r.startedAt)
}

// Findings returns a copy of the findings in a section, in emission order
func (r *Result) Findings(section Category) []Finding {
	findings := r.sections[section]
	out := make([]Finding, len(findings))
	copy(out, findings)
	return out
}

// Messages returns the finding messages of a section, in emission order
func (r *Result) Messages(section Category) []string {
	findings := r.sections[section]
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Message)
	}
	return out
}

// NoIssues reports whether a section yielded zero findings
func (r *Result) NoIssues(section Category) bool {
	return len(r.sections[section]) == 0
}

// Degraded reports whether a section holds a skip or could-not-complete sentinel
func (r *Result) Degraded(section Category) bool {
	for _, f := range r.sections[section] {
		if f.IsInformational() {
			return true
		}
	}
	return false
}

// TotalFindings counts every finding except informational sentinels
func (r *Result) TotalFindings() int {
	total := 0
	for _, findings := range r.sections {
		for _, f := range findings {
			if !f.IsInformational() {
				total++
			}
		}
	}
	return total
}
