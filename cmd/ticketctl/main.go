// ticketctl inspects and maintains the ticket collection directly through
// the configured key-value store, without going through the HTTP API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/ticket-desk/internal/clock"
	"github.com/spec-kit/ticket-desk/internal/config"
	"github.com/spec-kit/ticket-desk/internal/domain"
	"github.com/spec-kit/ticket-desk/internal/events"
	"github.com/spec-kit/ticket-desk/internal/observability"
	"github.com/spec-kit/ticket-desk/internal/persistence"
	"github.com/spec-kit/ticket-desk/internal/repository"
	"github.com/spec-kit/ticket-desk/internal/service"
	"github.com/spec-kit/ticket-desk/internal/timefmt"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// cliActor attributes maintenance done from the command line.
var cliActor = events.Actor{UserID: "cli", Name: "ticketctl"}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	driver   string
	path     string
	prefix   string
	format   string
	timezone string
	interval time.Duration
	logLevel string
}

type app struct {
	tickets   *service.TicketService
	formatter timefmt.Formatter
	clock     clock.Clock
	format    string
	interval  time.Duration
	out       io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var opts options
	flagSet := pflag.NewFlagSet("ticketctl", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&opts.driver, "driver", "", "store driver: memory, file, sqlite, redis or postgres (default from STORE_DRIVER)")
	flagSet.StringVar(&opts.path, "path", "", "store location for the file and sqlite drivers (default from STORE_PATH)")
	flagSet.StringVar(&opts.prefix, "prefix", "", "key prefix (default from STORE_KEY_PREFIX)")
	flagSet.StringVarP(&opts.format, "format", "o", formatTable, "output format: table, json or yaml")
	flagSet.StringVar(&opts.timezone, "tz", "", "display timezone (default from DISPLAY_TIMEZONE)")
	flagSet.DurationVar(&opts.interval, "interval", timefmt.DefaultRefresh, "refresh period for watch")
	flagSet.StringVar(&opts.logLevel, "log-level", "error", "log level")
	flagSet.Usage = func() { printHelp(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printHelp(stderr, flagSet)
		return errors.New("command required")
	}
	switch opts.format {
	case formatTable, formatJSON, formatYAML:
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagSet.Changed("driver") {
		cfg.Store.Driver = strings.ToLower(opts.driver)
	}
	if flagSet.Changed("path") {
		cfg.Store.Path = opts.path
	}
	if flagSet.Changed("prefix") {
		cfg.Store.KeyPrefix = opts.prefix
	}
	if flagSet.Changed("tz") {
		cfg.Display.Timezone = opts.timezone
	}
	cfg.Logger.Level = opts.logLevel
	cfg.Logger.Output = "stderr"

	loc, err := cfg.Display.Location()
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	kv, err := persistence.Open(ctx, *cfg, logger)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer kv.Close()

	clk := clock.Real()
	a := &app{
		tickets: service.NewTicketService(service.TicketDependencies{
			TicketRepo: repository.NewTicketRepository(kv, clk, logger),
			Clock:      clk,
			Logger:     logger,
		}),
		formatter: timefmt.NewFormatter(clk, loc),
		clock:     clk,
		format:    opts.format,
		interval:  opts.interval,
		out:       stdout,
	}
	logger.Debug("running command", zap.String("command", rest[0]), zap.String("driver", cfg.Store.Driver))
	return a.dispatch(ctx, rest[0], rest[1:])
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "list":
		return a.list(ctx)
	case "show":
		if len(args) != 1 {
			return errors.New("usage: ticketctl show <ticket-id>")
		}
		return a.show(ctx, args[0])
	case "stats":
		return a.stats(ctx)
	case "recent":
		return a.printTickets(a.tickets.Dashboard(ctx).Recent)
	case "report":
		return a.encode(a.tickets.Report(ctx))
	case "reset":
		tickets := a.tickets.ResetTickets(ctx, cliActor)
		fmt.Fprintf(a.out, "restored %d sample tickets\n", len(tickets))
		return nil
	case "clear":
		a.tickets.ClearTickets(ctx, cliActor)
		fmt.Fprintln(a.out, "cleared all tickets")
		return nil
	case "export":
		if a.format == formatTable {
			a.format = formatJSON
		}
		return a.encode(a.tickets.List(ctx))
	case "watch":
		if len(args) != 1 {
			return errors.New("usage: ticketctl watch <ticket-id>")
		}
		return a.watch(ctx, args[0])
	}
	return fmt.Errorf("unknown command %q", command)
}

func (a *app) list(ctx context.Context) error {
	return a.printTickets(a.tickets.List(ctx))
}

func (a *app) printTickets(tickets []domain.Ticket) error {
	if a.format != formatTable {
		return a.encode(tickets)
	}
	writer := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tSTATUS\tPRIORITY\tASSIGNEE\tUPDATED\tTITLE")
	for _, t := range tickets {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Status, t.Priority, t.Assignee, a.formatter.Format(t.Updated).Relative, t.Title)
	}
	return writer.Flush()
}

func (a *app) show(ctx context.Context, id string) error {
	ticket, err := a.tickets.Get(ctx, id)
	if err != nil {
		return err
	}
	if a.format != formatTable {
		return a.encode(ticket)
	}

	created := a.formatter.Format(ticket.Created)
	updated := a.formatter.Format(ticket.Updated)
	writer := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(writer, "ID:\t%s\n", ticket.ID)
	fmt.Fprintf(writer, "Title:\t%s\n", ticket.Title)
	fmt.Fprintf(writer, "Status:\t%s\n", ticket.Status)
	fmt.Fprintf(writer, "Priority:\t%s\n", ticket.Priority)
	fmt.Fprintf(writer, "Category:\t%s\n", ticket.Category)
	fmt.Fprintf(writer, "Assignee:\t%s\n", ticket.Assignee)
	if len(ticket.Tags) > 0 {
		fmt.Fprintf(writer, "Tags:\t%s\n", strings.Join(ticket.Tags, ", "))
	}
	fmt.Fprintf(writer, "Created:\t%s (%s)\n", created.Absolute, created.Relative)
	fmt.Fprintf(writer, "Updated:\t%s (%s)\n", updated.Absolute, updated.Relative)
	if err := writer.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\n%s\n", ticket.Description)
	now := a.formatter.Now()
	for _, c := range ticket.Comments {
		fmt.Fprintf(a.out, "\n%s, %s:\n  %s\n", c.Author, timefmt.DetailedAgo(c.Timestamp, now), c.Content)
	}
	return nil
}

func (a *app) stats(ctx context.Context) error {
	stats := a.tickets.Dashboard(ctx).Stats
	if a.format != formatTable {
		return a.encode(stats)
	}
	writer := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(writer, "Total:\t%d\n", stats.Total)
	fmt.Fprintf(writer, "Open:\t%d\n", stats.Open)
	fmt.Fprintf(writer, "In progress:\t%d\n", stats.InProgress)
	fmt.Fprintf(writer, "Resolved:\t%d\n", stats.Resolved)
	fmt.Fprintf(writer, "High priority:\t%d\n", stats.HighPriority)
	return writer.Flush()
}

// watch prints the ticket's created and updated times, then reprints them
// every interval until ctx is cancelled.
func (a *app) watch(ctx context.Context, id string) error {
	ticket, err := a.tickets.Get(ctx, id)
	if err != nil {
		return err
	}
	live := timefmt.NewLiveSet(a.clock, a.formatter, []time.Time{ticket.Created, ticket.Updated}, a.interval, func(d []timefmt.Display) {
		fmt.Fprintf(a.out, "%s  created %s  updated %s\n", ticket.ID, d[0].Relative, d[1].Relative)
	})
	<-ctx.Done()
	live.Stop()
	return nil
}

func (a *app) encode(v any) error {
	switch a.format {
	case formatYAML:
		encoder := yaml.NewEncoder(a.out)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	default:
		encoder := json.NewEncoder(a.out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	}
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `ticketctl inspects the ticket store used by the ticket-desk API.

Usage:
  ticketctl [flags] <command> [args]

Commands:
  list               list tickets, newest first
  show <id>          show one ticket with its comments
  stats              ticket counts by status
  recent             the unresolved tickets shown on the dashboard
  report             aggregates for the reports page
  reset              restore the sample tickets
  clear              delete every ticket
  export             dump the collection as JSON or YAML
  watch <id>         keep printing a ticket's relative times

Flags:
%s`, flagSet.FlagUsages())
}
