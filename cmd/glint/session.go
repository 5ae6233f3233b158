package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/glint/internal/config"
	"github.com/dshills/glint/internal/highlight"
	"github.com/dshills/glint/internal/languages"
	"github.com/dshills/glint/internal/logging"
	"github.com/dshills/glint/internal/plugin/lua"
)

// session is the configured highlighter behind one command.
type session struct {
	cfg     *config.Config
	log     *logging.Logger
	h       *highlight.Highlighter
	plugins *lua.Set
	dirs    []string // grammar directories, absolute
	debug   bool
}

func newSession(ctx context.Context, cmd *cobra.Command, g *globalFlags) (*session, error) {
	log := logging.New(logging.Config{Level: logging.LogLevelInfo, Output: cmd.ErrOrStderr(), Prefix: "glint"})

	cfg := config.New(config.WithFile(g.configPath), config.WithLogger(log))
	if err := cfg.Load(ctx); err != nil {
		return nil, err
	}

	level := cfg.Logging().LogLevel()
	if g.logLevel != "" {
		level = logging.ParseLogLevel(g.logLevel)
	}
	if g.debug {
		level = logging.LogLevelDebug
	}
	log.SetLevel(level)
	s := &session{cfg: cfg, log: log, debug: g.debug}
	h := highlight.New(append(s.engineOptions(cfg), highlight.WithLogger(log.WithComponent("highlight")))...)
	if err := languages.RegisterAll(h); err != nil {
		return nil, fmt.Errorf("registering bundled grammars: %w", err)
	}
	s.h = h

	for _, dir := range append(cfg.Grammars().Dirs, g.grammarDirs...) {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		names, err := languages.LoadDir(h, os.DirFS(abs), ".")
		if err != nil {
			return nil, err
		}
		log.Debug("loaded %d grammars from %s", len(names), abs)
		s.dirs = append(s.dirs, abs)
	}

	pc := cfg.Plugins()
	set, err := lua.LoadAll(h, append(pc.Lua, g.plugins...),
		lua.WithTimeout(pc.Timeout), lua.WithLogger(log.WithComponent("lua")))
	if err != nil {
		return nil, err
	}
	s.plugins = set

	for path, err := range cfg.ConfigErrors() {
		log.WithError(err).Warn("ignoring setting %s", path)
	}
	return s, nil
}

// engineOptions derives highlighter options from cfg. Debug mode always
// turns safe mode off.
func (s *session) engineOptions(cfg *config.Config) []highlight.Option {
	opts := cfg.Highlight().Options()
	if s.debug {
		opts = append(opts, highlight.WithSafeMode(false))
	}
	return opts
}

func (s *session) Close() {
	if s.plugins != nil {
		s.plugins.Close()
	}
	s.cfg.Close()
}

// reloadGrammar re-registers the language of a changed grammar file. It
// reports false when path is outside the grammar directories.
func (s *session) reloadGrammar(path string) (bool, error) {
	for _, dir := range s.dirs {
		rel, err := filepath.Rel(dir, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		name, err := languages.Reload(s.h, os.DirFS(dir), filepath.ToSlash(rel))
		if err != nil {
			return true, fmt.Errorf("reloading grammar %s: %w", name, err)
		}
		s.log.Info("reloaded grammar %s", name)
		return true, nil
	}
	return false, nil
}

// languageFor returns the language to highlight file with: the explicit
// name if given, else a language registered under the file's extension,
// else "" for auto-detection.
func (s *session) languageFor(explicit, file string) string {
	if explicit != "" {
		return explicit
	}
	ext := strings.TrimPrefix(filepath.Ext(file), ".")
	if ext == "" {
		return ""
	}
	if _, ok := s.h.GetLanguage(ext); ok {
		return ext
	}
	return ""
}

// highlightText highlights code as language, or auto-detects it.
func (s *session) highlightText(code, language string, ignoreIllegals bool) (*highlight.Result, error) {
	if language == "" {
		return s.h.HighlightAuto(code, nil)
	}
	return s.h.Highlight(code, highlight.HighlightOptions{Language: language, IgnoreIllegals: ignoreIllegals})
}

// readInput reads the named file, or standard input when args is empty
// or "-".
func readInput(cmd *cobra.Command, args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), "", err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", args[0], err
	}
	return string(data), args[0], nil
}
