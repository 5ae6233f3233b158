package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLanguagesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the registered languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd.Context(), cmd, g)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			for _, name := range s.h.ListLanguages() {
				if s.h.AutoDetection(name) {
					fmt.Fprintln(out, name)
				} else {
					fmt.Fprintf(out, "%s\t(no auto-detection)\n", name)
				}
			}
			return nil
		},
	}
}
