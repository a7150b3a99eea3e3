package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/lineq"
	"github.com/fwojciec/lineq/batch"
)

// Run executes the batch command.
func (c *BatchCmd) Run(deps *Dependencies) error {
	mode, err := resolveMode(c.Mode, deps.Mode)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lineq.ErrorMessage(err))
		return err
	}

	queries, err := c.readQueries(deps.Stdin)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}
	if len(queries) == 0 {
		fmt.Fprintln(deps.Stdout, "No queries to run.")
		return nil
	}

	jobs := make([]batch.Job, len(queries))
	for i, q := range queries {
		jobs[i] = batch.Job{
			Endpoint: deps.Endpoint,
			Request:  lineq.QueryRequest{Text: q, Mode: mode},
		}
	}

	runner := &batch.Runner{
		NewQuerier:  deps.NewQuerier,
		Limiter:     deps.Limiter,
		Concurrency: c.Concurrency,
	}
	if !c.NoHistory {
		runner.History = deps.History
	}

	result, err := runner.Run(deps.Ctx, jobs, func(e batch.ProgressEvent) {
		switch e.Type {
		case batch.ProgressCompleted:
			fmt.Fprintf(deps.Stderr, "[%d/%d] ok %s\n", e.Completed, e.Total, e.Job.Request.Text)
		case batch.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "[%d/%d] failed %s: %s\n", e.Completed, e.Total, e.Job.Request.Text, e.Outcome.Err.Message)
		}
	})
	if result != nil {
		for i, o := range result.Outcomes {
			if !o.OK() {
				continue
			}
			fmt.Fprintf(deps.Stdout, "== %s\n%s", queries[i], o.Body)
			if !strings.HasSuffix(o.Body, "\n") {
				fmt.Fprintln(deps.Stdout)
			}
		}
		if result.Unrecorded > 0 {
			fmt.Fprintf(deps.Stderr, "warning: %d queries not recorded\n", result.Unrecorded)
		}
		fmt.Fprintf(deps.Stdout, "Done: %d succeeded, %d failed", result.Succeeded, result.Failed)
		if result.Skipped > 0 {
			fmt.Fprintf(deps.Stdout, ", %d skipped", result.Skipped)
		}
		fmt.Fprintln(deps.Stdout)
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lineq.ErrorMessage(err))
		return err
	}
	return nil
}

// readQueries returns the non-empty lines of the input file, or of stdin
// when no file (or "-") is given.
func (c *BatchCmd) readQueries(stdin io.Reader) ([]string, error) {
	r := stdin
	if c.File != "" && c.File != "-" {
		f, err := os.Open(c.File)
		if err != nil {
			return nil, fmt.Errorf("open queries: %w", err)
		}
		defer f.Close()
		r = f
	}
	if r == nil {
		return nil, nil
	}

	var queries []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if q := strings.TrimSpace(scanner.Text()); q != "" {
			queries = append(queries, q)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}
	return queries, nil
}
