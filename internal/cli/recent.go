package cli

import (
	"time"

	"phichain/internal/store"

	"github.com/spf13/cobra"
)

type recentList []store.RecentProject

func (r recentList) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(r))
	for _, p := range r {
		rows = append(rows, []string{p.Name, p.Path, p.LastOpened.Local().Format(time.DateTime)})
	}
	return []string{"Name", "Path", "Last opened"}, rows
}

func newRecentCmd(app *App) *cobra.Command {
	var (
		remove string
		clear  bool
	)

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently opened projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := store.OpenRecent(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer r.Close()

			meta := map[string]any{}
			switch {
			case clear:
				if err := r.Clear(ctx); err != nil {
					return writeErr(cmd, err)
				}
				meta["cleared"] = true
			case remove != "":
				removed, err := r.Remove(ctx, remove)
				if err != nil {
					return writeErr(cmd, err)
				}
				meta["removed"] = removed
			}

			list, err := r.List(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			meta["count"] = len(list)
			hints := []string{}
			if len(list) > 0 {
				hints = append(hints, "phichain --project "+list[0].Path)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   recentList(list),
				"meta":   meta,
				"_hints": hints,
			})
		},
	}

	cmd.Flags().StringVar(&remove, "remove", "", "Forget the project at this path")
	cmd.Flags().BoolVar(&clear, "clear", false, "Forget every project")
	cmd.MarkFlagsMutuallyExclusive("remove", "clear")
	return cmd
}
