package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/lineq"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	filter := lineq.RecordFilter{
		FailedOnly: c.Failed,
		Limit:      c.Limit,
	}
	if c.Host != "" {
		filter.Host = &c.Host
	}

	records, err := deps.History.FindRecords(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lineq.ErrorMessage(err))
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(deps.Stdout, "No queries recorded. Use 'lineq query' to run one.")
		return nil
	}

	for _, r := range records {
		status := "ok"
		if r.Failed() {
			status = r.Code
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s  %s  %q\n",
			r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Endpoint(), r.Mode, status, r.Query)
	}
	return nil
}

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	r, err := deps.History.FindRecordByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lineq.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "ID:       %s\n", r.ID)
	fmt.Fprintf(deps.Stdout, "Time:     %s\n", r.CreatedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(deps.Stdout, "Endpoint: %s\n", r.Endpoint())
	fmt.Fprintf(deps.Stdout, "Mode:     %s\n", r.Mode)
	fmt.Fprintf(deps.Stdout, "Query:    %s\n", r.Query)
	if r.Failed() {
		fmt.Fprintf(deps.Stdout, "Error:    %s (%s)\n", r.Detail, r.Code)
		return nil
	}
	fmt.Fprintf(deps.Stdout, "Hash:     %s\n\n", r.BodyHash)
	fmt.Fprint(deps.Stdout, r.Body)
	return nil
}

// Run executes the forget command.
func (c *ForgetCmd) Run(deps *Dependencies) error {
	if err := deps.History.DeleteRecord(deps.Ctx, c.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lineq.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Deleted record %s\n", c.ID)
	return nil
}
