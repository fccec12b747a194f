package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func resolveCmd(logLevel *string) *cobra.Command {
	var termFlag string
	cmd := &cobra.Command{
		Use:     "resolve <field> <value>",
		Short:   "Resolve a loose filter value against a loaded term",
		Example: "  classdex resolve subject \"computer science\"\n  classdex resolve --term 1263 campus main",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), "resolve", *logLevel)
			if err != nil {
				return err
			}
			defer a.Close()

			t, err := a.termOrDefault(termFlag)
			if err != nil {
				return err
			}

			svc := a.searchService()
			r, err := svc.ResolveValue(cmd.Context(), t, args[0], args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if r.Matched {
				_, _ = fmt.Fprintf(out, "%s (%s)\n", r.Value, r.Strategy)
				return nil
			}
			_, _ = fmt.Fprintf(out, "no match for %q\n", args[1])
			if len(r.Suggestions) > 0 {
				_, _ = fmt.Fprintf(out, "did you mean: %s\n", strings.Join(r.Suggestions, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&termFlag, "term", "", "Term code (default: first of index.terms)")
	return cmd
}
