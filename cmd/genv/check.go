package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/genv-lang/genv/internal/parser"
)

var checkFlags struct {
	jobs int
}

var checkCmd = &cobra.Command{
	Use:   "check FILE...",
	Short: "Parse several entry files concurrently",
	Long: `Parse every given file independently and report all diagnostics.

Each file gets its own parse context, so the files are checked in
parallel. The command fails when any of them fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().IntVarP(&checkFlags.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "maximum parallel parses")
}

type checkOutcome struct {
	path   string
	result *parser.Result
	err    error
}

func runCheck(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	outcomes, err := checkFiles(cmd.Context(), e, args, checkFlags.jobs)
	if err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		var buf bytes.Buffer
		if err := e.report(&buf, o.result); err != nil {
			return err
		}
		_, _ = io.Copy(cmd.ErrOrStderr(), &buf)

		status := "ok"
		if o.err != nil {
			status = "FAIL"
			failed++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-4s %s\n", status, o.path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to parse", failed, len(outcomes))
	}
	return nil
}

// checkFiles parses paths concurrently. Parse failures are part of the
// outcomes; only cancellation is returned as an error.
func checkFiles(ctx context.Context, e *env, paths []string, jobs int) ([]checkOutcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	outcomes := make([]checkOutcome, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := e.parseFile(path)
			outcomes[i] = checkOutcome{path: path, result: res, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
