package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/glint/internal/highlight"
)

func newDetectCmd(g *globalFlags) *cobra.Command {
	var candidates []string
	cmd := &cobra.Command{
		Use:   "detect [file]",
		Short: "Guess the language of a file or standard input",
		Long: `Guess the language of a file or standard input.

Prints the best and second best language with their relevance. Plain
text is reported as "plaintext".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd.Context(), cmd, g)
			if err != nil {
				return err
			}
			defer s.Close()

			code, _, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			res, err := s.h.HighlightAuto(code, candidates)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printGuess(out, res)
			if res.SecondBest != nil {
				printGuess(out, res.SecondBest)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&candidates, "candidates", nil, "Languages to consider (default: all)")
	return cmd
}

func printGuess(w io.Writer, res *highlight.Result) {
	name := res.Language
	if name == "" {
		name = "plaintext"
	}
	fmt.Fprintf(w, "%s\t%d\n", name, res.Relevance)
}
