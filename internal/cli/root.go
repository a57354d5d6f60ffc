package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"phichain/internal/editor"
	"phichain/internal/format"
	"phichain/internal/store"
	"phichain/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

type App struct {
	Project    string
	PrettyJSON bool
	Format     string
	LogFile    string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "phichain",
		Short:        "Phigros chart editor (TUI + scriptable commands)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Open the editor on a project
  phichain --project ./my-chart

  # Create a project from a song and an illustration
  phichain new ./my-chart --music song.ogg --illustration cover.png --name "My Song"

  # Check a project before sharing it
  phichain doctor ./my-chart --fail
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive editor.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd.Context(), app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Project, "project", envOr("PHICHAIN_PROJECT", ""), "Project directory to open")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("PHICHAIN_FORMAT", "json"), "Output format (json|text)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", envOr("PHICHAIN_LOG", ""), "Write editor logs to this file")

	cmd.AddCommand(newNewCmd(app))
	cmd.AddCommand(newMigrateCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newInfoCmd(app))
	cmd.AddCommand(newRecentCmd(app))
	cmd.AddCommand(newKeysCmd(app))

	return cmd
}

func runTUI(ctx context.Context, app *App) error {
	if ctx == nil {
		ctx = context.Background()
	}
	closeLog, err := setupLogging(app.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	settings, err := store.LoadSettings()
	if err != nil {
		return err
	}
	recent, err := store.OpenRecent(ctx)
	if err != nil {
		// The editor works without the registry; only the history of opened projects is lost.
		log.Printf("recent projects: %v", err)
		recent = nil
	} else {
		defer recent.Close()
	}

	toasts := &editor.Toasts{}
	ed := editor.New(editor.Options{Settings: settings, Notifier: toasts, Recent: recent})
	if app.Project != "" {
		if err := ed.LoadProject(ctx, app.Project); err != nil {
			return fmt.Errorf("%s", store.Describe(err))
		}
	}
	return tui.Run(ed, toasts)
}

// setupLogging routes the standard logger to path, or discards it while the editor owns
// the terminal.
func setupLogging(path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(path, "phichain")
	if err != nil {
		return nil, err
	}
	return func() { _ = f.Close() }, nil
}

func resolveProject(app *App, args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	if app.Project != "" {
		return app.Project, nil
	}
	return "", errNoProject
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), store.Describe(err))
	return err
}
