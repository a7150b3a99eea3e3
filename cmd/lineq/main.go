package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/lineq"
	"github.com/fwojciec/lineq/batch"
	lqslog "github.com/fwojciec/lineq/slog"
	"github.com/fwojciec/lineq/sqlite"
	"github.com/fwojciec/lineq/tcp"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Stdin feeds the batch command when no file is given.
	Stdin io.Reader

	// SQLite database used for query history.
	DB *sqlite.DB

	// Services for end-to-end testing.
	History lineq.HistoryService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		Stdin: os.Stdin,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  m.Stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("lineq"),
		kong.Description("Query a line-protocol search server"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
		kong.Vars{
			"default_config": defaultPath("config.toml"),
			"default_db":     defaultPath("lineq.db"),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'lineq --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	cfg, err := LoadConfig(cli.Config)
	if err != nil {
		fmt.Fprintf(stderr, "Hint: Set LINEQ_CONFIG to use a different config file\n")
		return err
	}
	deps.Config = cfg
	deps.Mode = cfg.Mode

	var logger *slog.Logger
	if cli.Debug {
		logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	// Open the history database for commands that read or write it. Query
	// commands only record history, so they run without it if it fails.
	if needsHistory(cmd, cli) {
		db := sqlite.NewDB(cli.DB)
		if err := db.Open(); err != nil {
			err = fmt.Errorf("failed to open database at %q: %w", cli.DB, err)
			if cmd != "query" && cmd != "batch" {
				fmt.Fprintf(stderr, "Hint: Set LINEQ_DB to use a different database path\n")
				return err
			}
			fmt.Fprintf(stderr, "warning: history disabled: %s\n", err)
		} else {
			m.DB = db
			defer m.Close()

			m.History = sqlite.NewHistoryService(m.DB)
			deps.History = m.History
			if logger != nil {
				deps.History = lqslog.NewLoggingHistoryService(m.History, logger)
			}
		}
	}

	if cmd == "query" || cmd == "batch" {
		ep, err := cfg.Resolve(cli.Profile, cli.Host, cli.Port)
		if err != nil {
			fmt.Fprintf(stderr, "error: %s\n", lineq.ErrorMessage(err))
			return err
		}
		deps.Endpoint = ep

		opts := []tcp.Option{
			tcp.WithDialTimeout(firstPositive(cli.DialTimeout, cfg.DialTimeout)),
			tcp.WithIOTimeout(firstPositive(cli.IOTimeout, cfg.IOTimeout)),
		}
		deps.NewQuerier = func(ep lineq.Endpoint) lineq.Querier {
			var q lineq.Querier = tcp.NewClient(ep, opts...)
			if logger != nil {
				q = lqslog.NewLoggingQuerier(q, ep, logger)
			}
			return q
		}
		deps.Querier = deps.NewQuerier(ep)
	}

	if cmd == "batch" {
		deps.Limiter = batch.NewAddressLimiter(cli.Batch.RPS)
	}

	return kongCtx.Run(deps)
}

// needsHistory reports whether cmd reads or writes query history.
func needsHistory(cmd string, cli *CLI) bool {
	switch cmd {
	case "query":
		return !cli.Query.NoHistory
	case "batch":
		return !cli.Batch.NoHistory
	case "history", "show", "forget":
		return true
	}
	return false
}

// defaultPath returns a path under ~/.lineq, creating the directory.
func defaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	dir := filepath.Join(home, ".lineq")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, name)
}
