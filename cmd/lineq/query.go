package main

import (
	"fmt"

	"github.com/fwojciec/lineq"
)

// Run executes the query command.
func (c *QueryCmd) Run(deps *Dependencies) error {
	mode, err := resolveMode(c.Mode, deps.Mode)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lineq.ErrorMessage(err))
		return err
	}

	req := lineq.QueryRequest{Text: c.Text, Mode: mode}
	body, err := deps.Querier.Query(deps.Ctx, req)
	outcome := lineq.NewOutcome(body, err)

	if deps.History != nil && !c.NoHistory {
		if err := deps.History.CreateRecord(deps.Ctx, lineq.NewRecord(deps.Endpoint, req, outcome)); err != nil {
			fmt.Fprintf(deps.Stderr, "warning: query not recorded: %s\n", lineq.ErrorMessage(err))
		}
	}

	text, clientErr := lineq.StripMark(outcome.Text())
	if clientErr {
		fmt.Fprintf(deps.Stderr, "Client error: %s\n", text)
		return outcome.Err
	}

	fmt.Fprint(deps.Stdout, text)
	return nil
}
