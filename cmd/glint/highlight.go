package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/glint/internal/emitter"
	"github.com/dshills/glint/internal/highlight"
)

// Output formats of the highlight command.
const (
	formatHTML = "html"
	formatJSON = "json"
	formatTree = "tree"
)

type highlightFlags struct {
	language       string
	ignoreIllegals bool
	format         string
	classPrefix    string
	class          string
}

func newHighlightCmd(g *globalFlags) *cobra.Command {
	f := &highlightFlags{}
	cmd := &cobra.Command{
		Use:   "highlight [file]",
		Short: "Highlight a file or standard input",
		Long: `Highlight a file or standard input.

The language is taken from --language, then from a block class given with
--class (such as "language-json"), then from the file extension. Without
any of these it is auto-detected.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch f.format {
			case formatHTML, formatJSON, formatTree:
			default:
				return fmt.Errorf("unknown format %q (want html, json or tree)", f.format)
			}

			s, err := newSession(cmd.Context(), cmd, g)
			if err != nil {
				return err
			}
			defer s.Close()
			if cmd.Flags().Changed("class-prefix") {
				s.h.Configure(highlight.WithClassPrefix(f.classPrefix))
			}

			code, file, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var res *highlight.Result
			if f.class != "" && f.language == "" {
				res, err = s.h.HighlightBlock(f.class, code)
			} else {
				res, err = s.highlightText(code, s.languageFor(f.language, file), f.ignoreIllegals)
			}
			if err != nil {
				return err
			}
			if res == nil {
				// The class disabled highlighting.
				res = &highlight.Result{Value: emitter.EscapeHTML(code), Code: code}
			}
			return writeResult(cmd.OutOrStdout(), res, f.format)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.language, "language", "l", "", "Language name or alias")
	flags.BoolVar(&f.ignoreIllegals, "ignore-illegals", false, "Render text with illegal lexemes instead of failing")
	flags.StringVarP(&f.format, "format", "f", formatHTML, "Output format: html, json or tree")
	flags.StringVar(&f.classPrefix, "class-prefix", "", "Prefix of scope classes in HTML output")
	flags.StringVar(&f.class, "class", "", "Block class attribute to take the language from")
	return cmd
}

// jsonResult is the json output format.
type jsonResult struct {
	Language   string      `json:"language"`
	Relevance  int         `json:"relevance"`
	Illegal    bool        `json:"illegal"`
	Value      string      `json:"value"`
	SecondBest *jsonResult `json:"secondBest,omitempty"`
}

func toJSONResult(res *highlight.Result) *jsonResult {
	if res == nil {
		return nil
	}
	return &jsonResult{
		Language:   res.Language,
		Relevance:  res.Relevance,
		Illegal:    res.Illegal,
		Value:      res.Value,
		SecondBest: toJSONResult(res.SecondBest),
	}
}

func writeResult(w io.Writer, res *highlight.Result, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(toJSONResult(res))
	case formatTree:
		if res.Tree == nil {
			return fmt.Errorf("no scope tree for this result")
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Tree)
	default:
		_, err := io.WriteString(w, res.Value)
		return err
	}
}
