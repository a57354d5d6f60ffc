package main

import (
	"os"
	"path/filepath"
	"strings"

	"phichain/internal/cli"
)

func isProjectDir(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	st, err := os.Stat(filepath.Join(s, "chart.json"))
	return err == nil && !st.IsDir()
}

func rewriteDirectProjectArgs(argv []string, isProject func(string) bool) []string {
	// Convenience: `phichain <dir>` works like `phichain --project <dir>`.
	//
	// Cobra treats the first non-flag token as a subcommand, so we rewrite argv before parsing.
	// Persistent flags may come first (e.g. `phichain --log-file x.log <dir>`), so look for
	// the first positional token, not just argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--project":  true,
		"--format":   true,
		"--log-file": true,
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isProject(argv[i+1]) {
				out := make([]string, 0, len(argv)+1)
				out = append(out, argv[:i]...)
				out = append(out, "--project", argv[i+1])
				out = append(out, argv[i+2:]...)
				return out
			}
			return argv
		}

		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++ // skip value if present
			}
			continue
		}

		// First positional token. Subcommand names win over directories of the same name.
		if isProject(a) && !isSubcommand(a) {
			out := make([]string, 0, len(argv)+1)
			out = append(out, argv[:i]...)
			out = append(out, "--project", argv[i])
			out = append(out, argv[i+1:]...)
			return out
		}
		return argv
	}

	return argv
}

func isSubcommand(name string) bool {
	for _, c := range cli.NewRootCmd().Commands() {
		if c.Name() == name || c.HasAlias(name) {
			return true
		}
	}
	return false
}

func main() {
	os.Args = rewriteDirectProjectArgs(os.Args, isProjectDir)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
