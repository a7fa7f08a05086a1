package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"salesdash/internal/cli"
	"salesdash/internal/config"
	"salesdash/internal/core"
	"salesdash/internal/dashboard"
	"salesdash/internal/log"
	"salesdash/internal/snapshot"
)

const usage = `usage: salesdash-cli <command> [flags]

commands:
  summary   show revenue metrics, monthly, product and order tables
  add       record a sale and show the updated dashboard
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cli.LoadEnvFile()
	cfg := config.Load()
	if err := cfg.ValidateClient(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, log.ComponentDashboard)

	ctx, stop := cli.ShutdownContext(logger)
	defer stop()

	store := cli.OpenSnapshotStore(logger, cfg.SQLiteDBPath)
	defer store.Close()

	board := dashboard.NewBoard(dashboard.NewClient(cfg.GatewayURL, nil), snapshot.NewCache(store))

	var err error
	switch os.Args[1] {
	case "summary":
		err = runSummary(ctx, board, os.Args[2:])
	case "add":
		err = runAdd(ctx, board, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runSummary(ctx context.Context, board *dashboard.Board, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	timeout := fs.Duration("timeout", 30*time.Second, "gateway request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	st, err := board.Load(reqCtx)
	if rerr := dashboard.Render(os.Stdout, st); rerr != nil {
		return rerr
	}
	return err
}

func runAdd(ctx context.Context, board *dashboard.Board, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	amount := fs.String("amount", "", "sale amount in PHP")
	customer := fs.String("customer", "", "customer name")
	product := fs.String("product", "", "product name")
	date := fs.String("date", time.Now().Format(time.DateOnly), "order date (YYYY-MM-DD)")
	payment := fs.String("payment", "", "payment method")
	timeout := fs.Duration("timeout", 30*time.Second, "gateway request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	draft := core.SaleDraft{
		CustomerName:  *customer,
		ProductName:   *product,
		Date:          *date,
		PaymentMethod: *payment,
	}
	if *amount != "" {
		v, err := core.ParseAmount(*amount)
		if err != nil {
			return fmt.Errorf("amount %q: %w", *amount, err)
		}
		draft.Amount = v
	}

	reqCtx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	// The optimistic update lands on top of whatever views are available.
	if _, err := board.Load(reqCtx); err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not load current sales data:", err)
	}

	res, err := board.Submit(reqCtx, draft)
	if err != nil {
		var missing *core.MissingFieldsError
		if errors.As(err, &missing) {
			fs.Usage()
		}
		return err
	}

	if res.Confirmed {
		fmt.Printf("Sale added (%s)\n\n", res.RecordID)
	} else {
		fmt.Printf("Sale shown locally as %s; the gateway did not confirm it\n\n", res.Order.ID)
	}
	return dashboard.Render(os.Stdout, board.State())
}
