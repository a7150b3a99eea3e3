package main

import (
	"context"
	"io"
	"time"

	"github.com/fwojciec/lineq"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Config   Config
	Endpoint lineq.Endpoint
	Mode     lineq.SearchMode

	Querier    lineq.Querier
	NewQuerier func(ep lineq.Endpoint) lineq.Querier
	Limiter    lineq.EndpointLimiter
	History    lineq.HistoryService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Host        string        `help:"Server host name (overrides the profile)" env:"LINEQ_HOST"`
	Port        int           `help:"Server TCP port (overrides the profile)" env:"LINEQ_PORT"`
	Profile     string        `short:"P" help:"Endpoint profile from the config file" env:"LINEQ_PROFILE"`
	Config      string        `help:"Config file path" env:"LINEQ_CONFIG" default:"${default_config}"`
	DB          string        `name:"db" help:"History database path" env:"LINEQ_DB" default:"${default_db}"`
	Debug       bool          `help:"Log queries and storage calls to stderr"`
	DialTimeout time.Duration `help:"Connection timeout (0 waits forever)"`
	IOTimeout   time.Duration `name:"io-timeout" help:"Per-line read/write timeout (0 waits forever)"`

	Query    QueryCmd    `cmd:"" help:"Send one query and print the reply"`
	Batch    BatchCmd    `cmd:"" help:"Send one query per input line"`
	History  HistoryCmd  `cmd:"" help:"List past queries"`
	Show     ShowCmd     `cmd:"" help:"Show one past query in full"`
	Forget   ForgetCmd   `cmd:"" help:"Delete one past query"`
	Profiles ProfilesCmd `cmd:"" help:"List endpoint profiles"`
}

// QueryCmd is the "query" subcommand.
type QueryCmd struct {
	Text      string `arg:"" help:"Query text"`
	Mode      string `short:"m" help:"Search mode: full or quick (default from config, else full)"`
	NoHistory bool   `help:"Do not record the query"`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	File        string  `arg:"" optional:"" help:"File with one query per line (default stdin)"`
	Mode        string  `short:"m" help:"Search mode: full or quick (default from config, else full)"`
	Concurrency int     `short:"c" default:"4" help:"Concurrent query limit"`
	RPS         float64 `name:"rps" default:"0" help:"Queries per second per server (0 for no limit)"`
	NoHistory   bool    `help:"Do not record the queries"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Limit  int    `short:"n" default:"20" help:"Maximum number of records"`
	Failed bool   `help:"Only show client errors"`
	Host   string `name:"for-host" help:"Only show queries sent to this host"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID string `arg:"" help:"Record ID"`
}

// ForgetCmd is the "forget" subcommand.
type ForgetCmd struct {
	ID string `arg:"" help:"Record ID"`
}

// ProfilesCmd is the "profiles" subcommand.
type ProfilesCmd struct{}

// resolveMode returns the mode named on the command line, or fallback.
func resolveMode(name string, fallback lineq.SearchMode) (lineq.SearchMode, error) {
	if name == "" {
		return fallback, nil
	}
	return lineq.ParseSearchMode(name)
}

func firstPositive(ds ...time.Duration) time.Duration {
	for _, d := range ds {
		if d > 0 {
			return d
		}
	}
	return 0
}
