package cli

import (
	"errors"
	"strings"

	"phichain/internal/model"
	"phichain/internal/store"

	"github.com/spf13/cobra"
)

func newNewCmd(app *App) *cobra.Command {
	var (
		music        string
		illustration string
		meta         model.ProjectMeta
	)

	cmd := &cobra.Command{
		Use:   "new <dir>",
		Short: "Create a project from a song and an illustration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(music) == "" || strings.TrimSpace(illustration) == "" {
				return writeErr(cmd, errors.New("--music and --illustration are required"))
			}
			if strings.TrimSpace(meta.Name) == "" {
				meta.Name = baseName(args[0])
			}
			p, err := store.CreateProject(args[0], music, illustration, meta)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"path": p.Root,
					"meta": meta,
				},
				"_hints": []string{
					"phichain --project " + p.Root,
					"phichain doctor " + p.Root,
				},
			})
		},
	}

	cmd.Flags().StringVar(&music, "music", "", "Song file ("+strings.Join(store.MusicExtensions, "|")+")")
	cmd.Flags().StringVar(&illustration, "illustration", "", "Illustration file ("+strings.Join(store.IllustrationExtensions, "|")+")")
	cmd.Flags().StringVar(&meta.Name, "name", "", "Song name (default: directory name)")
	cmd.Flags().StringVar(&meta.Composer, "composer", "", "Composer")
	cmd.Flags().StringVar(&meta.Charter, "charter", "", "Charter")
	cmd.Flags().StringVar(&meta.Illustrator, "illustrator", "", "Illustrator")
	cmd.Flags().StringVar(&meta.Level, "level", "", "Difficulty label, e.g. \"IN Lv.13\"")
	return cmd
}

func baseName(dir string) string {
	dir = strings.TrimRight(strings.ReplaceAll(dir, "\\", "/"), "/")
	if i := strings.LastIndex(dir, "/"); i >= 0 {
		return dir[i+1:]
	}
	return dir
}
