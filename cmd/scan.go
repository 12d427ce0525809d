package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teemow/tasknotes/internal/config"
	"github.com/teemow/tasknotes/internal/logging"
	"github.com/teemow/tasknotes/internal/scan"
)

// Output formats for the scan command.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

type scanOptions struct {
	allPages bool
	verbose  bool
	output   string
	tags     []string
	words    string
}

func newScanCmd(a *app) *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan <monthsBack>",
		Short: "Count tasks in the notes created monthsBack months ago",
		Long: `Search for notes whose title contains the title filter and that were created
during the calendar month monthsBack months before the current one (0 is the
current month), fetch each note and count its numbered task lines.

This is the default command: "tasknotes 1" is the same as "tasknotes scan 1".`,
		Example: `  # Count the tasks noted last month
  tasknotes 1

  # Same, scanning every matching note and listing the tasks
  tasknotes scan 1 --all-pages --verbose

  # Machine-readable result
  tasknotes scan 0 --output json`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return &usageError{err: err}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			monthsBack, err := strconv.Atoi(args[0])
			if err != nil {
				return usageErrorf("monthsBack must be an integer, got %q", args[0])
			}
			switch opts.output {
			case outputText, outputJSON, outputYAML:
			default:
				return usageErrorf("invalid --output %q (supported: text, json, yaml)", opts.output)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return runScan(ctx, a, monthsBack, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.allPages, "all-pages", false, "Scan every matching note instead of only the first page")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print the tasks found in each note")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputText, "Output format: text, json or yaml")
	cmd.Flags().StringSliceVar(&opts.tags, "tag", nil, "Only scan notes with this tag (repeatable)")
	cmd.Flags().StringVar(&opts.words, "words", "", "Additional search terms in Evernote search grammar")
	cmd.Flags().Int("page-size", config.DefaultPageSize, "Notes requested per search call. Can also use TASKNOTES_PAGE_SIZE env var.")
	_ = a.v.BindPFlag(config.KeyPageSize, cmd.Flags().Lookup("page-size"))

	return cmd
}

func runScan(ctx context.Context, a *app, monthsBack int, opts scanOptions) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	logger := logging.NewSlogAdapter(a.newLogger(a.stderr))
	logger.Debug("opening evernote session",
		logging.Service(cfg.Service),
		"token", logging.SanitizeToken(cfg.Token))

	// Fails with ErrTokenNotConfigured before any remote call when the
	// token is still the placeholder.
	store, err := a.storeFactory(ctx, cfg, nil)
	if err != nil {
		return err
	}

	scanOpts := cfg.ScanOptions()
	scanOpts.Tags = opts.tags
	scanOpts.Words = opts.words
	scanOpts.AllPages = opts.allPages
	scanOpts.KeepTasks = opts.verbose || opts.output != outputText

	scanner := scan.NewScanner(store, scanOpts, logger, nil)

	var progress *scan.Progress
	if opts.output == outputText {
		progress = textProgress(a.stdout, opts.verbose)
	}

	result, err := scanner.Run(ctx, monthsBack, progress)
	if err != nil {
		return err
	}

	switch opts.output {
	case outputJSON:
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case outputYAML:
		enc := yaml.NewEncoder(a.stdout)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	}

	if result.Truncated {
		fmt.Fprintf(a.stderr, "Warning: only %d of %d matching notes were scanned; use --all-pages to scan all of them\n",
			result.Fetched, result.TotalNotes)
	}
	fmt.Fprintf(a.stdout, "Found %d tasks\n", result.Tasks)
	return nil
}

func textProgress(w io.Writer, verbose bool) *scan.Progress {
	p := &scan.Progress{
		Searching: func(query string) {
			fmt.Fprintf(w, "Searching for notes matching query: %s\n", query)
		},
		Found: func(total int) {
			fmt.Fprintf(w, "Found %d matching notes\n", total)
		},
	}
	if verbose {
		p.Note = func(n scan.NoteTasks) {
			fmt.Fprintf(w, "%s (%s): %d tasks\n", n.Title, n.Created.Format("2006-01-02"), n.Count)
			for _, task := range n.Tasks {
				fmt.Fprintf(w, "  - %s\n", task)
			}
		}
	}
	return p
}
