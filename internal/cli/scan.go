package cli

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

	"github.com/spf13/cobra"

	"github.com/digimosa/pii-scanner/internal/config"
	"github.com/digimosa/pii-scanner/internal/scanner"
	"github.com/digimosa/pii-scanner/internal/session"
	"github.com/digimosa/pii-scanner/internal/staleness"
)

type scanOptions struct {
	Profile    string
	Workers    int
	JSON       bool
	Duplicates bool
	Quiet      bool
}

func newScanCommand(global *GlobalOptions) *cobra.Command {
	opts := &scanOptions{}

	cmd := &cobra.Command{
		Use:   "scan <directory>",
		Short: "Scan a directory for personal data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			opts.apply(cmd, cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := runScan(ctx, a, args[0], opts.notifier(cmd, cfg))
			if err != nil {
				return err
			}
			if opts.JSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			printResults(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Profile, "profile", "p", "", "Detection profile: standard|benin")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "Parallel workers (0=config)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print findings and statistics as JSON")
	cmd.Flags().BoolVar(&opts.Duplicates, "duplicates", false, "Report files with identical content")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Hide progress output")

	return cmd
}

// apply lets explicit flags win over the config file.
func (o *scanOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("profile") {
		cfg.Scan.Profile = o.Profile
	}
	if o.Workers > 0 {
		cfg.Scan.Workers = o.Workers
	}
	if o.Duplicates {
		cfg.Scan.DetectDuplicates = true
	}
}

func (o *scanOptions) notifier(cmd *cobra.Command, cfg *config.Config) session.Notifier {
	if o.Quiet {
		return quietNotifier{}
	}
	return newProgressPrinter(cmd.ErrOrStderr(), cfg.Progress.MaxPerSecond)
}

// runScan starts a scan and blocks until it has finished. Interrupting ctx
// stops dispatch; the files already being processed are completed first.
func runScan(ctx context.Context, a *app, root string, n session.Notifier) (session.Results, error) {
	m := a.manager(n)
	id, err := m.Start(ctx, root)
	if err != nil {
		return session.Results{}, err
	}
	// the run owns a context derived from ctx, so it always terminates
	if err := m.Wait(context.Background(), id); err != nil {
		return session.Results{}, err
	}

	res, err := m.Results(id)
	if errors.Is(err, session.ErrNotCompleted) {
		info, _ := m.Progress(id)
		return session.Results{}, fmt.Errorf("scan %s failed: %s", id, info.Error)
	}
	return res, err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResults(w io.Writer, res session.Results) {
	fmt.Fprintf(w, "Scan %s\n\n", res.ID)
	fmt.Fprint(w, res.Statistics.Summary())

	if len(res.Statistics.TopRiskyFiles) > 0 {
		fmt.Fprintln(w, "\nFichiers les plus à risque :")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "RISK\tPII\tLAST ACCESS\tTYPES\tFILE")
		for _, f := range res.Statistics.TopRiskyFiles {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
				f.RiskLevel, f.PiiCount, staleness.Label(f.Staleness), strings.Join(f.Types, ","), f.FilePath)
		}
		tw.Flush()

		var warned bool
		for _, f := range res.Statistics.TopRiskyFiles {
			if f.StalenessMessage == "" {
				continue
			}
			if !warned {
				fmt.Fprintln(w, "\nDonnées dormantes :")
				warned = true
			}
			fmt.Fprintf(w, "  - %s : %s\n", f.FilePath, f.StalenessMessage)
		}
	}

	if len(res.Duplicates) > 0 {
		fmt.Fprintln(w, "\nFichiers en double :")
		for _, group := range res.Duplicates {
			fmt.Fprintf(w, "  - %s\n", strings.Join(group, ", "))
		}
	}
}

type quietNotifier struct{}

func (quietNotifier) OnProgress(string, scanner.Progress) {}
func (quietNotifier) Complete(string)                     {}
func (quietNotifier) Error(string, string)                {}
