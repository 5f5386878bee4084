package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/menukit/internal/menu"
	"github.com/roach88/menukit/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database   string
	Token      string
	Menu       string
	ErrorsOnly bool
	Limit      int
	Summary    bool
}

// TraceResult holds the dispatches matching the filter.
type TraceResult struct {
	Records []menu.Record   `json:"records"`
	Summary []store.Summary `json:"summary,omitempty"`
}

// Text prints one line per dispatch, or the per-menu summary.
func (r TraceResult) Text(w io.Writer, verbose bool) {
	if r.Summary != nil {
		if len(r.Summary) == 0 {
			fmt.Fprintln(w, "(no dispatches)")
		}
		for _, s := range r.Summary {
			fmt.Fprintf(w, "  %-28s %-7s %d\n", s.Menu, s.Response, s.Count)
		}
		return
	}
	if len(r.Records) == 0 {
		fmt.Fprintln(w, "(no dispatches)")
		return
	}
	for _, rec := range r.Records {
		formatRecord(w, rec, verbose)
	}
}

// formatRecord formats a single dispatch for text output.
func formatRecord(w io.Writer, rec menu.Record, verbose bool) {
	line := fmt.Sprintf("  [%d] %s.%s -> %s", rec.Seq, rec.Menu, rec.Element, rec.Response)
	if rec.Target != "" {
		line += " " + rec.Target
	}
	if rec.Deferred {
		line += " (deferred)"
	}
	fmt.Fprintln(w, line)
	if rec.Error != "" {
		fmt.Fprintf(w, "       Error: %s\n", rec.Error)
	}
	if verbose {
		fmt.Fprintf(w, "       Token: %s\n", truncateID(rec.Token))
		fmt.Fprintf(w, "       State: %s -> %s\n", orDash(rec.BlobBefore), orDash(rec.BlobAfter))
	}
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Query the dispatch trace",
		Long: `Query the dispatch trace recorded by "menukit serve".

Each dispatch records the menu and element that handled it, the
response it produced, the menu switched to, and digests of the state
before and after.

The database defaults to trace.db from the config.

Examples:
  menukit trace --db ./menukit.db
  menukit trace --db ./menukit.db --menu settings --errors
  menukit trace --db ./menukit.db --token 0190f3c4-... -v
  menukit trace --db ./menukit.db --summary --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite trace database")
	cmd.Flags().StringVar(&opts.Token, "token", "", "only dispatches of this interaction token")
	cmd.Flags().StringVar(&opts.Menu, "menu", "", "only dispatches handled by this menu path")
	cmd.Flags().BoolVar(&opts.ErrorsOnly, "errors", false, "only failed dispatches")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "keep the newest n dispatches")
	cmd.Flags().BoolVar(&opts.Summary, "summary", false, "count dispatches per menu and response instead")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.formatter(cmd)

	path := opts.Database
	if path == "" {
		path = opts.Settings().Trace.DB
	}
	if path == "" {
		return formatter.Fail(ExitCommandError, ErrCodeBadArgument, "no trace database: pass --db or set trace.db in the config", nil)
	}
	if _, err := os.Stat(path); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("trace database not found: %s", path), err)
	}

	st, err := store.Open(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, "failed to open trace database", err)
	}
	defer st.Close()

	if opts.Summary {
		summary, err := st.Summarize(ctx)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, "failed to summarize trace", err)
		}
		if summary == nil {
			summary = []store.Summary{}
		}
		return formatter.Success(TraceResult{Records: []menu.Record{}, Summary: summary})
	}

	records, err := st.List(ctx, store.Filter{
		Token:      opts.Token,
		Menu:       opts.Menu,
		ErrorsOnly: opts.ErrorsOnly,
		Limit:      opts.Limit,
	})
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, "failed to read trace", err)
	}
	return formatter.Success(TraceResult{Records: records})
}

// truncateID truncates a long token for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
