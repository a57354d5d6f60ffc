package cli

import (
	"fmt"
	"io"
	"strings"

	"phichain/internal/action"
	"phichain/internal/editor"
	"phichain/internal/store"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

func newKeysCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List editor actions and their hotkeys (settings overrides applied)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := store.LoadSettings()
			if err != nil {
				return writeErr(cmd, err)
			}
			toasts := &editor.Toasts{}
			ed := editor.New(editor.Options{Settings: settings, Notifier: toasts})

			actions := ed.Actions.Actions()
			conflicts := []map[string]any{}
			for _, c := range ed.Actions.Conflicts() {
				conflicts = append(conflicts, map[string]any{"binding": c.Binding.String(), "actions": c.IDs})
			}
			problems := []string{}
			for _, t := range toasts.Items() {
				if t.Error {
					problems = append(problems, t.Message)
				}
			}

			if app.Format == "text" {
				return renderKeys(cmd.OutOrStdout(), actions, ed.Actions.Conflicts(), problems)
			}
			return writeOut(cmd, app, map[string]any{
				"data": actions,
				"meta": map[string]any{
					"count":     len(actions),
					"conflicts": conflicts,
					"problems":  problems,
				},
				"_hints": []string{"phichain keys --format text"},
			})
		},
	}
}

func keysMarkdown(actions []action.Info, conflicts []action.Conflict, problems []string) string {
	var b strings.Builder
	b.WriteString("# Key map\n\n")
	b.WriteString("| Action | Hotkey | Context |\n|---|---|---|\n")
	for _, a := range actions {
		hk := a.Hotkey
		if hk == "" {
			hk = "(unbound)"
		} else {
			hk = "`" + hk + "`"
		}
		fmt.Fprintf(&b, "| %s (`%s`) | %s | %s |\n", a.Title, a.ID, hk, a.Context)
	}
	if len(conflicts) > 0 {
		b.WriteString("\n## Conflicts\n\n")
		for _, c := range conflicts {
			fmt.Fprintf(&b, "- `%s`: %s\n", c.Binding.String(), strings.Join(c.IDs, ", "))
		}
	}
	if len(problems) > 0 {
		b.WriteString("\n## Problems\n\n")
		for _, p := range problems {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	return b.String()
}

func renderKeys(w io.Writer, actions []action.Info, conflicts []action.Conflict, problems []string) error {
	md := keysMarkdown(actions, conflicts, problems)
	// A fixed style: auto-detection queries the terminal, which blocks when piped.
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("notty"),
		glamour.WithWordWrap(160),
	)
	if err != nil {
		_, err = io.WriteString(w, md)
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
