package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestRewriteDirectProjectArgs(t *testing.T) {
	t.Parallel()

	projects := map[string]bool{"./my-chart": true, "doctor": true}
	isProject := func(s string) bool { return projects[s] }

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"phichain"},
			want: []string{"phichain"},
		},
		{
			name: "project dir first token",
			in:   []string{"phichain", "./my-chart"},
			want: []string{"phichain", "--project", "./my-chart"},
		},
		{
			name: "project dir after value flag",
			in:   []string{"phichain", "--log-file", "editor.log", "./my-chart"},
			want: []string{"phichain", "--log-file", "editor.log", "--project", "./my-chart"},
		},
		{
			name: "project dir after equals flag",
			in:   []string{"phichain", "--log-file=editor.log", "./my-chart"},
			want: []string{"phichain", "--log-file=editor.log", "--project", "./my-chart"},
		},
		{
			name: "project dir after bool flag",
			in:   []string{"phichain", "--pretty", "./my-chart"},
			want: []string{"phichain", "--pretty", "--project", "./my-chart"},
		},
		{
			name: "project dir after double dash",
			in:   []string{"phichain", "--", "./my-chart"},
			want: []string{"phichain", "--project", "./my-chart"},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"phichain", "info", "./my-chart"},
			want: []string{"phichain", "info", "./my-chart"},
		},
		{
			name: "subcommand wins over same-named directory",
			in:   []string{"phichain", "doctor"},
			want: []string{"phichain", "doctor"},
		},
		{
			name: "unknown token not rewritten",
			in:   []string{"phichain", "wat"},
			want: []string{"phichain", "wat"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectProjectArgs(tt.in, isProject)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteDirectProjectArgs:\n got: %#v\nwant: %#v", got, tt.want)
			}
		})
	}
}

func TestIsProjectDir(t *testing.T) {
	dir := t.TempDir()
	if isProjectDir(dir) {
		t.Fatalf("empty directory is not a project")
	}
	if err := os.WriteFile(filepath.Join(dir, "chart.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !isProjectDir(dir) {
		t.Fatalf("directory with chart.json should count as a project")
	}
}
