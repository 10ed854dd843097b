package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	seekerrors "github.com/Aman-CERP/txtseek/internal/errors"
	"github.com/Aman-CERP/txtseek/internal/output"
	"github.com/Aman-CERP/txtseek/internal/search"
)

type searchOptions struct {
	dir    string
	limit  int
	format string
}

// searchResponse is the JSON form of a search.
type searchResponse struct {
	Query   string          `json:"query"`
	Root    string          `json:"root"`
	Results []search.Result `json:"results"`
}

func newSearchCmd(a *app) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Rank the text files of a directory against a query",
		Long: `Search opens (or builds) the index of --dir and prints matching files
as "path:  score", best first. Files sharing no scored term with the query
are not listed.

Examples:
  txtseek search quarterly report
  txtseek search "error budget" --dir ~/notes --limit 5
  txtseek search kubernetes --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			err := runSearch(cmd, a, query, opts)
			if err != nil && opts.format == "json" {
				if data, jerr := seekerrors.FormatJSON(err); jerr == nil {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				}
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", ".", "Directory to search")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results (default from config, 0 = all)")
	cmd.Flags().StringVarP(&opts.format, "format", "o", "text", "Output format: text, json")

	return cmd
}

func runSearch(cmd *cobra.Command, a *app, query string, opts searchOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return seekerrors.New(seekerrors.ErrCodeInvalidInput,
			fmt.Sprintf("unknown output format %q", opts.format), nil).
			WithSuggestion("Use --format text or --format json")
	}

	cfg, err := a.loadConfig(opts.dir)
	if err != nil {
		return err
	}
	limit := cfg.Search.MaxResults
	if cmd.Flags().Changed("limit") {
		limit = opts.limit
	}

	mgr, err := newManager(cfg, nil, nil)
	if err != nil {
		return err
	}
	engine, err := newEngine(cfg, mgr, nil)
	if err != nil {
		return err
	}

	res, err := mgr.Open(cmd.Context(), opts.dir)
	if err != nil {
		return err
	}

	slog.Info("search_started", slog.String("query", query), slog.Int("limit", limit))
	results, err := engine.Search(cmd.Context(), query, search.Options{Limit: limit})
	if err != nil {
		return err
	}

	out := output.New(cmd.OutOrStdout())
	if opts.format == "json" {
		return out.JSON(searchResponse{Query: query, Root: res.Root, Results: results})
	}
	out.Results(results, res.Root)
	return nil
}
