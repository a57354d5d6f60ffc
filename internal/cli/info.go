package cli

import (
	"phichain/internal/model"
	"phichain/internal/store"

	"github.com/spf13/cobra"
)

type bpmRow struct {
	Beat string  `json:"beat" yaml:"beat"`
	Bpm  float32 `json:"bpm" yaml:"bpm"`
}

type chartInfo struct {
	Project string            `json:"project" yaml:"project"`
	Meta    model.ProjectMeta `json:"meta" yaml:"meta"`
	Format  uint32            `json:"format" yaml:"format"`
	Offset  float32           `json:"offset" yaml:"offset"`
	Lines   int               `json:"lines" yaml:"lines"`
	Notes   int               `json:"notes" yaml:"notes"`
	Events  int               `json:"events" yaml:"events"`
	Bpm     []bpmRow          `json:"bpm" yaml:"bpm"`
	// LastNote is the end of the latest note, in beats and seconds.
	LastNoteBeat    string  `json:"lastNoteBeat,omitempty" yaml:"last_note_beat,omitempty"`
	LastNoteSeconds float64 `json:"lastNoteSeconds" yaml:"last_note_seconds"`
}

func newInfoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "info [dir]",
		Short: "Summarize a project's chart",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveProject(app, args)
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := store.LoadProject(root)
			if err != nil {
				return writeErr(cmd, err)
			}
			info := summarize(p)
			return writeOut(cmd, app, map[string]any{
				"data": info,
				"meta": map[string]any{"migratedFrom": p.MigratedFrom},
				"_hints": []string{
					"phichain --project " + p.Path.Root,
				},
			})
		},
	}
}

func summarize(p *store.Project) chartInfo {
	c := p.Chart
	info := chartInfo{
		Project: p.Path.Root,
		Meta:    p.Meta,
		Format:  c.Format,
		Offset:  c.Offset.Offset,
		Bpm:     []bpmRow{},
	}
	for _, pt := range c.BpmList.Points() {
		info.Bpm = append(info.Bpm, bpmRow{Beat: pt.Beat.String(), Bpm: pt.Bpm})
	}

	var (
		last    model.Beat
		hasNote bool
	)
	var walk func(t model.LineTree)
	walk = func(t model.LineTree) {
		info.Lines++
		info.Notes += len(t.Notes)
		info.Events += len(t.Events)
		for _, n := range t.Notes {
			if end := n.EndBeat(); !hasNote || last.Less(end) {
				last, hasNote = end, true
			}
		}
		for _, child := range t.Children {
			walk(child)
		}
	}
	for _, t := range c.Lines {
		walk(t)
	}
	if hasNote {
		info.LastNoteBeat = last.String()
		info.LastNoteSeconds = c.BpmList.TimeAt(last)
	}
	return info
}
