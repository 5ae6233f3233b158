// Package languages ships the bundled grammars and loads grammar
// directories into a Highlighter.
//
// A grammar file is a YAML document (see grammar.ParseYAML) registered
// under its base name: "flix.yaml" becomes the language "flix".
package languages

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/dshills/glint/internal/grammar"
	"github.com/dshills/glint/internal/highlight"
)

// Ext is the extension of grammar files.
const Ext = ".yaml"

//go:embed grammars/*.yaml
var bundled embed.FS

const bundledDir = "grammars"

// Names returns the names of the bundled grammars, sorted.
func Names() []string {
	entries, err := fs.ReadDir(bundled, bundledDir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if name, ok := NameOf(e.Name()); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Load decodes a bundled grammar.
func Load(name string) (*grammar.Language, error) {
	file := path.Join(bundledDir, strings.ToLower(name)+Ext)
	data, err := fs.ReadFile(bundled, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", highlight.ErrUnknownLanguage, name)
		}
		return nil, err
	}
	return grammar.ParseYAML(file, data)
}

// RegisterAll registers every bundled grammar.
func RegisterAll(h *highlight.Highlighter) error {
	_, err := LoadDir(h, bundled, bundledDir)
	return err
}

// NameOf returns the language name of a grammar file, and false when the
// file is not a grammar.
func NameOf(file string) (string, bool) {
	base := path.Base(file)
	if !strings.HasSuffix(base, Ext) || strings.HasPrefix(base, ".") {
		return "", false
	}
	return strings.ToLower(strings.TrimSuffix(base, Ext)), true
}

// LoadDir registers every grammar file in dir of fsys and returns the
// registered names, sorted. Grammars are compiled when first used.
func LoadDir(h *highlight.Highlighter, fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading grammar directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name, ok := NameOf(e.Name())
		if !ok {
			continue
		}
		file := path.Join(dir, e.Name())
		if err := h.RegisterLanguage(name, fileLanguage(fsys, file)); err != nil {
			return names, err
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Reload re-registers the language defined by file. A removed file leaves
// the language unregistered. It returns the language name.
func Reload(h *highlight.Highlighter, fsys fs.FS, file string) (string, error) {
	name, ok := NameOf(file)
	if !ok {
		return "", fmt.Errorf("%s is not a grammar file", file)
	}
	h.UnregisterLanguage(name)

	if _, err := fs.Stat(fsys, file); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return name, nil
		}
		return name, err
	}
	return name, h.RegisterLanguage(name, fileLanguage(fsys, file))
}

func fileLanguage(fsys fs.FS, file string) highlight.LanguageFn {
	return func() (*grammar.Language, error) {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, err
		}
		return grammar.ParseYAML(file, data)
	}
}
