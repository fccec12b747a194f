package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	dombatch "github.com/kailas-cloud/classdex/internal/domain/batch"
	batchuc "github.com/kailas-cloud/classdex/internal/usecase/batch"
)

func loadCmd(logLevel *string) *cobra.Command {
	var (
		termFlag string
		recreate bool
	)
	cmd := &cobra.Command{
		Use:   "load <fixture.yaml>",
		Short: "Load a term's sections from a YAML fixture",
		Long: "Create the term index if needed and upsert every section in the fixture. " +
			"Records that fail validation are reported individually and do not stop the load.",
		Example: "  classdex load testdata/sections.yaml\n  classdex load --term 1269 --recreate fall.yaml",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(filepath.Clean(args[0]))
			if err != nil {
				return fmt.Errorf("open fixture: %w", err)
			}
			defer func() { _ = f.Close() }()

			file, err := batchuc.DecodeFile(f)
			if err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}

			a, err := newApp(cmd.Context(), "load", *logLevel)
			if err != nil {
				return err
			}
			defer a.Close()

			raw := termFlag
			if raw == "" {
				raw = file.Term
			}
			t, err := a.termOrDefault(raw)
			if err != nil {
				return err
			}

			svc := batchuc.New(a.sections, a.logger).WithChunkSize(a.cfg.Index.LoadChunkSize)
			report, err := svc.Load(cmd.Context(), t, file.Sections, recreate)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ok, failed := dombatch.Count(report.Results)
			for _, r := range report.Results {
				if r.Status() == dombatch.StatusError {
					_, _ = fmt.Fprintf(out, "  record %d (%s): %v\n", r.Index(), r.ClassNumber(), r.Err())
				}
			}
			_, _ = fmt.Fprintf(out, "Loaded %d of %d sections into %s (%s); index created: %t\n",
				ok, len(report.Results), t, t.Description(), report.IndexCreated)
			if failed > 0 {
				return fmt.Errorf("%d record(s) failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&termFlag, "term", "", "Term code; overrides the fixture's term")
	cmd.Flags().BoolVar(&recreate, "recreate", false, "Drop and rebuild the term index before loading")
	return cmd
}
