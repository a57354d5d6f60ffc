package store

import (
	"fmt"

	"phichain/internal/model"
)

type IssueLevel string

const (
	IssueError   IssueLevel = "error"
	IssueWarning IssueLevel = "warning"
)

type Issue struct {
	Level   IssueLevel `json:"level"`
	Code    string     `json:"code"`
	Message string     `json:"message"`
	Path    string     `json:"path,omitempty"`
}

// ValidateChart reports every broken chart invariant. All returned issues are errors.
func ValidateChart(c model.Chart) []Issue {
	var issues []Issue
	if c.BpmList.Len() == 0 {
		issues = append(issues, Issue{Level: IssueError, Code: "bpm_list_empty", Message: "bpm list is empty", Path: "bpm_list"})
	} else if _, err := model.NewBpmList(c.BpmList.Points()...); err != nil {
		issues = append(issues, Issue{Level: IssueError, Code: "bpm_list_invalid", Message: err.Error(), Path: "bpm_list"})
	}
	for i, t := range c.Lines {
		issues = validateTree(issues, fmt.Sprintf("lines[%d]", i), t)
	}
	return issues
}

func validateTree(issues []Issue, path string, t model.LineTree) []Issue {
	for i, n := range t.Notes {
		if err := n.Validate(); err != nil {
			issues = append(issues, Issue{Level: IssueError, Code: "note_invalid", Message: err.Error(), Path: fmt.Sprintf("%s.notes[%d]", path, i)})
		}
	}
	for i, e := range t.Events {
		if err := e.Validate(); err != nil {
			issues = append(issues, Issue{Level: IssueError, Code: "event_invalid", Message: err.Error(), Path: fmt.Sprintf("%s.events[%d]", path, i)})
		}
	}
	for i, c := range t.Children {
		issues = validateTree(issues, fmt.Sprintf("%s.children[%d]", path, i), c)
	}
	return issues
}

// LintChart adds warnings on top of ValidateChart. Warnings never block a load.
func LintChart(c model.Chart) []Issue {
	issues := ValidateChart(c)
	for i, t := range c.Lines {
		issues = lintTree(issues, fmt.Sprintf("lines[%d]", i), t)
	}
	return issues
}

func lintTree(issues []Issue, path string, t model.LineTree) []Issue {
	for i := range t.Events {
		for j := i + 1; j < len(t.Events); j++ {
			a, b := t.Events[i], t.Events[j]
			if a.Kind != b.Kind {
				continue
			}
			if a.StartBeat.Less(b.EndBeat) && b.StartBeat.Less(a.EndBeat) {
				issues = append(issues, Issue{
					Level:   IssueWarning,
					Code:    "event_overlap",
					Message: fmt.Sprintf("%s events overlap (%s..%s and %s..%s)", a.Kind, a.StartBeat, a.EndBeat, b.StartBeat, b.EndBeat),
					Path:    fmt.Sprintf("%s.events[%d]", path, j),
				})
			}
		}
	}
	if len(t.Notes) == 0 && len(t.Events) == 0 && len(t.Children) == 0 {
		issues = append(issues, Issue{Level: IssueWarning, Code: "line_empty", Message: "line has no notes, events or children", Path: path})
	}
	for i, c := range t.Children {
		issues = lintTree(issues, fmt.Sprintf("%s.children[%d]", path, i), c)
	}
	return issues
}
