package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"folio/internal/connectivity"
	"folio/internal/database"
	"folio/internal/holdings"
	"folio/internal/models"
	"github.com/google/subcommands"
)

var commands = []subcommands.Command{
	&listCmd{},
	&countCmd{},
	&clearCmd{},
	&refreshCmd{},
	&summaryCmd{},
	&importCmd{},
}

type listCmd struct{}

func (*listCmd) Name() string             { return "list" }
func (*listCmd) Synopsis() string         { return "print every cached holding" }
func (*listCmd) Usage() string            { return "list\n\n  Prints the cached rows sorted by symbol.\n" }
func (*listCmd) SetFlags(*flag.FlagSet) {}

func (*listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	rows, err := e.repo.GetAll(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading cache: %v\n", err)
		return subcommands.ExitFailure
	}
	printRows(os.Stdout, rows)
	return subcommands.ExitSuccess
}

type countCmd struct{}

func (*countCmd) Name() string             { return "count" }
func (*countCmd) Synopsis() string         { return "print the number of cached holdings" }
func (*countCmd) Usage() string            { return "count\n" }
func (*countCmd) SetFlags(*flag.FlagSet) {}

func (*countCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	n, err := e.repo.Count(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading cache: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(n)
	return subcommands.ExitSuccess
}

type clearCmd struct{}

func (*clearCmd) Name() string             { return "clear" }
func (*clearCmd) Synopsis() string         { return "delete every cached holding" }
func (*clearCmd) Usage() string            { return "clear\n" }
func (*clearCmd) SetFlags(*flag.FlagSet) {}

func (*clearCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	if err := e.repo.DeleteAll(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error clearing cache: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println("cache cleared")
	return subcommands.ExitSuccess
}

type refreshCmd struct{}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "fetch the remote snapshot and reconcile the cache" }
func (*refreshCmd) Usage() string {
	return `refresh

  Fetches holdings from HOLDINGS_URL and reconciles the cache against them.
  Fails without touching the cache when offline or when the fetch fails.
`
}
func (*refreshCmd) SetFlags(*flag.FlagSet) {}

func (*refreshCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	if err := e.portfolio(ctx).Refresh(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error refreshing holdings: %v\n", err)
		return subcommands.ExitFailure
	}
	n, _ := e.repo.Count(ctx)
	fmt.Printf("cache holds %d holdings\n", n)
	return subcommands.ExitSuccess
}

type summaryCmd struct {
	force bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print the portfolio summary" }
func (*summaryCmd) Usage() string {
	return `summary [-force]

  Loads holdings the same way the viewer does (network first, cache as
  fallback) and prints the aggregated P&L.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "force", false, "request a refresh from the network")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	s, err := e.portfolio(ctx).GetPortfolio(ctx, c.force)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printSummary(os.Stdout, s)
	return subcommands.ExitSuccess
}

type importCmd struct{}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "reconcile the cache against a snapshot file" }
func (*importCmd) Usage() string {
	return `import <file>

  Reads a holdings snapshot in the remote JSON format and reconciles the
  cache against it: symbols missing from the file are deleted, every other
  row is written with a fresh timestamp.
`
}
func (*importCmd) SetFlags(*flag.FlagSet) {}

func (*importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: import takes exactly one snapshot file")
		return subcommands.ExitUsageError
	}
	e, err := openEnv(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	syncer := holdings.NewSyncer(e.repo, fileSource{path: f.Arg(0)}, connectivity.Static(true), e.log)
	if err := syncer.RefreshHoldings(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error importing %s: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}
	n, _ := e.repo.Count(ctx)
	fmt.Printf("imported %s, cache holds %d holdings\n", f.Arg(0), n)
	return subcommands.ExitSuccess
}

func printRows(w io.Writer, rows []database.HoldingRow) {
	fmt.Fprintf(w, "%-12s %10s %12s %12s %12s  %s\n", "SYMBOL", "QTY", "LTP", "AVG", "CLOSE", "UPDATED")
	for _, r := range rows {
		fmt.Fprintf(w, "%-12s %10d %12s %12s %12s  %s\n",
			r.Symbol, r.Quantity,
			r.LTP.StringFixed(2), r.AvgPrice.StringFixed(2), r.Close.StringFixed(2),
			time.UnixMilli(r.LastUpdated).UTC().Format(time.RFC3339))
	}
}

func printSummary(w io.Writer, s models.PortfolioSummary) {
	for _, h := range s.Holdings {
		fmt.Fprintf(w, "%-12s %10d  value %12s  pnl %12s\n", h.Symbol, h.Quantity, h.CurrentValue().StringFixed(2), h.TotalPnL().StringFixed(2))
	}
	fmt.Fprintf(w, "current value     %s\n", s.CurrentValue.StringFixed(2))
	fmt.Fprintf(w, "total investment  %s\n", s.TotalInvestment.StringFixed(2))
	fmt.Fprintf(w, "today's pnl       %s\n", s.TodaysPnL.StringFixed(2))
	fmt.Fprintf(w, "total pnl         %s (%s%%)\n", s.TotalPnL.StringFixed(2), s.TotalPnLPercentage.StringFixed(2))
}
