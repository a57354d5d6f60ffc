package cli

import (
	"encoding/json"
	"os"

	"phichain/internal/store"

	"github.com/spf13/cobra"
)

func newMigrateCmd(app *App) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate [dir]",
		Short: "Upgrade chart.json to the current format",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveProject(app, args)
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := store.OpenProjectPath(root)
			if err != nil {
				return writeErr(cmd, err)
			}
			data, err := os.ReadFile(p.ChartPath())
			if err != nil {
				return writeErr(cmd, store.IOError{Op: "read", Path: p.ChartPath(), Err: err})
			}
			c, from, err := store.MigrateChartBytes(data)
			if err != nil {
				return writeErr(cmd, err)
			}

			meta := map[string]any{
				"from":   from,
				"to":     store.CurrentFormat,
				"dryRun": dryRun,
			}
			if dryRun {
				b, err := store.EncodeChart(c)
				if err != nil {
					return writeErr(cmd, err)
				}
				var tree any
				if err := json.Unmarshal(b, &tree); err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": tree, "meta": meta})
			}

			written := from != store.CurrentFormat
			if written {
				if err := store.WriteChart(p, c); err != nil {
					return writeErr(cmd, err)
				}
			}
			meta["written"] = written
			return writeOut(cmd, app, map[string]any{
				"data":   map[string]any{"project": p.Root, "format": store.CurrentFormat},
				"meta":   meta,
				"_hints": []string{"phichain doctor " + p.Root},
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the migrated chart instead of writing it")
	return cmd
}
