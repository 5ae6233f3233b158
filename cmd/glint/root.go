package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath  string
	grammarDirs []string
	plugins     []string
	logLevel    string
	debug       bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "glint",
		Short: "Syntax highlighter",
		Long: `glint highlights source code with highlight.js-style grammars.

Text is read from the named file or standard input and written as HTML
markup, a JSON result, or the scope tree. Grammars are YAML files; Lua
scripts can hook into every highlight call.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&g.configPath, "config", "c", "", "Path to configuration file")
	flags.StringSliceVar(&g.grammarDirs, "grammars", nil, "Additional grammar directories")
	flags.StringSliceVar(&g.plugins, "plugin", nil, "Lua plugin scripts, run in the given order")
	flags.StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.BoolVarP(&g.debug, "debug", "d", false, "Debug mode: report internal errors instead of recovering")

	root.AddCommand(
		newHighlightCmd(g),
		newDetectCmd(g),
		newLanguagesCmd(g),
		newViewCmd(g),
	)
	return root
}
