package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type DoctorReport struct {
	Project string  `json:"project"`
	Format  uint32  `json:"format,omitempty"`
	Issues  []Issue `json:"issues"`
}

func (r DoctorReport) HasErrors() bool {
	for _, it := range r.Issues {
		if it.Level == IssueError {
			return true
		}
	}
	return false
}

func (r *DoctorReport) add(level IssueLevel, code, msg, path string) {
	r.Issues = append(r.Issues, Issue{Level: level, Code: code, Message: msg, Path: path})
}

// DoctorProject checks a project directory without modifying it: layout, meta.json,
// chart.json parsing and migration, then chart invariants and lint warnings.
func DoctorProject(root string) DoctorReport {
	root = filepath.Clean(root)
	r := DoctorReport{Project: root, Issues: []Issue{}}

	st, err := os.Stat(root)
	if err != nil || !st.IsDir() {
		r.add(IssueError, "project_missing", "project directory does not exist", root)
		return r
	}
	p := ProjectPath{Root: root}

	for _, name := range []string{ChartFile, MetaFile} {
		if !fileExists(filepath.Join(root, name)) {
			r.add(IssueError, "file_missing", "missing "+name, name)
		}
	}
	if _, err := p.MusicPath(); err != nil {
		r.add(IssueError, "music_invalid", reason(err), "music.*")
	}
	if _, err := p.IllustrationPath(); err != nil {
		r.add(IssueError, "illustration_invalid", reason(err), "illustration.*")
	}

	if fileExists(p.MetaPath()) {
		meta, err := ReadMeta(p)
		if err != nil {
			r.add(IssueError, "meta_invalid", reason(err), MetaFile)
		} else if strings.TrimSpace(meta.Name) == "" {
			r.add(IssueWarning, "meta_name_empty", "meta.json has no name", MetaFile)
		}
	}

	if !fileExists(p.ChartPath()) {
		return r
	}
	data, err := os.ReadFile(p.ChartPath())
	if err != nil {
		r.add(IssueError, "chart_unreadable", err.Error(), ChartFile)
		return r
	}
	tree, err := parseTree(data)
	if err != nil {
		r.add(IssueError, "chart_parse", err.Error(), ChartFile)
		return r
	}
	from, err := treeFormat(tree)
	if err != nil {
		r.add(IssueError, "chart_format", err.Error(), ChartFile+"#format")
		return r
	}
	r.Format = from
	if from < CurrentFormat {
		r.add(IssueWarning, "chart_outdated", fmt.Sprintf("chart format %d will be migrated to %d (run `phichain migrate`)", from, CurrentFormat), ChartFile)
	}
	migrated, err := Migrate(tree)
	if err != nil {
		var future FutureFormatError
		code := "chart_migration"
		if errors.As(err, &future) {
			code = "chart_future_format"
		}
		r.add(IssueError, code, err.Error(), ChartFile)
		return r
	}

	c, err := decodeUnchecked(migrated)
	if err != nil {
		r.add(IssueError, "chart_schema", err.Error(), ChartFile)
		return r
	}
	r.Issues = append(r.Issues, prefix(LintChart(c))...)
	return r
}

func prefix(issues []Issue) []Issue {
	for i := range issues {
		issues[i].Path = ChartFile + "#" + issues[i].Path
	}
	return issues
}

func reason(err error) string {
	var pe ProjectError
	if errors.As(err, &pe) {
		return pe.Reason
	}
	return err.Error()
}
