package main

import (
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/dshills/glint/internal/config"
	"github.com/dshills/glint/internal/config/watcher"
	"github.com/dshills/glint/internal/highlight"
	"github.com/dshills/glint/internal/render/terminal"
)

// Grammar files picked up by the view watcher.
const grammarPattern = "*.yaml"

type viewFlags struct {
	language string
	tabWidth int
}

func newViewCmd(g *globalFlags) *cobra.Command {
	f := &viewFlags{}
	cmd := &cobra.Command{
		Use:   "view file",
		Short: "Page through a highlighted file in the terminal",
		Long: `Page through a highlighted file in the terminal.

The view follows changes to the file, to the configuration file and, with
grammars.watch set, to the grammar directories.

Keys: q quit, j/k scroll, h/l pan, space/b page, g/G first/last line,
r reload.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd.Context(), cmd, g)
			if err != nil {
				return err
			}
			defer s.Close()

			tc := s.cfg.Theme()
			theme, err := terminal.LoadTheme(tc.Name, tc.Scopes)
			if err != nil {
				return err
			}
			painter := terminal.NewPainter(theme)
			painter.SetTabWidth(f.tabWidth)

			file := args[0]
			language := s.languageFor(f.language, file)
			load := func() (*highlight.Result, error) {
				data, err := os.ReadFile(file)
				if err != nil {
					return nil, err
				}
				return s.highlightText(string(data), language, true)
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return err
			}
			if err := screen.Init(); err != nil {
				return err
			}
			defer screen.Fini()

			pager := terminal.NewPager(screen, painter, load,
				terminal.WithTitle(filepath.Base(file)),
				terminal.WithPagerLogger(s.log.WithComponent("view")))

			w, err := s.watch(file, pager.Reload)
			if err != nil {
				return err
			}
			defer w.Close()

			return pager.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&f.language, "language", "l", "", "Language name or alias")
	cmd.Flags().IntVar(&f.tabWidth, "tab-width", terminal.DefaultTabWidth, "Columns per tab stop")
	return cmd
}

// watch follows file, the config file and, when enabled, the grammar
// directories, calling reload after each change has been applied.
func (s *session) watch(file string, reload func()) (*watcher.Watcher, error) {
	gc := s.cfg.Grammars()
	w, err := watcher.New(watcher.WithDebounce(gc.Debounce), watcher.WithLogger(s.log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(file); err != nil {
		_ = w.Close()
		return nil, err
	}
	if gc.Watch {
		for _, dir := range s.dirs {
			if err := w.WatchDir(dir, grammarPattern); err != nil {
				_ = w.Close()
				return nil, err
			}
		}
	}
	w.OnChange(func(ev watcher.Event) {
		if _, err := s.reloadGrammar(ev.Path); err != nil {
			s.log.WithError(err).Warn("grammar %s changed", ev.Path)
		}
		reload()
	})
	w.Start()

	s.cfg.OnReload(func(c *config.Config) {
		s.h.Configure(s.engineOptions(c)...)
		reload()
	})
	if err := s.cfg.Watch(gc.Debounce); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}
