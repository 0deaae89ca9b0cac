package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/digimosa/pii-scanner/internal/storage"
)

type historyOptions struct {
	JSON   bool
	Delete bool
}

func newHistoryCommand(global *GlobalOptions) *cobra.Command {
	opts := &historyOptions{}

	cmd := &cobra.Command{
		Use:   "history [scan-id]",
		Short: "List stored scans or show one of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			if cfg.Storage.DBPath == "" {
				return errors.New("history requires storage.db_path to be set")
			}
			store, err := storage.Open(cfg.Storage.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				if opts.Delete {
					return errors.New("--delete requires a scan id")
				}
				scans, err := store.ListScans()
				if err != nil {
					return err
				}
				if opts.JSON {
					return writeJSON(out, scans)
				}
				printScans(out, scans)
				return nil
			}

			if opts.Delete {
				if err := store.DeleteScan(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(out, "deleted scan %s\n", args[0])
				return nil
			}

			scan, err := store.GetScan(args[0])
			if err != nil {
				return err
			}
			if opts.JSON {
				return writeJSON(out, scan)
			}
			printScan(out, scan)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print as JSON")
	cmd.Flags().BoolVar(&opts.Delete, "delete", false, "Delete the given scan and its findings")

	return cmd
}

func printScans(w io.Writer, scans []storage.ScanModel) {
	if len(scans) == 0 {
		fmt.Fprintln(w, "no scans recorded")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPROFILE\tSTARTED\tFILES\tFINDINGS\tROOT")
	for _, s := range scans {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			s.ID, s.Status, s.Profile, s.StartTime.Format(time.DateTime), s.TotalFiles, s.TotalFindings, s.RootPath)
	}
	tw.Flush()
}

func printScan(w io.Writer, s *storage.ScanModel) {
	fmt.Fprintf(w, "Scan:     %s\n", s.ID)
	fmt.Fprintf(w, "Root:     %s\n", s.RootPath)
	fmt.Fprintf(w, "Profile:  %s\n", s.Profile)
	fmt.Fprintf(w, "Status:   %s\n", s.Status)
	if s.Error != "" {
		fmt.Fprintf(w, "Error:    %s\n", s.Error)
	}
	fmt.Fprintf(w, "Started:  %s\n", s.StartTime.Format(time.DateTime))
	if !s.EndTime.IsZero() {
		fmt.Fprintf(w, "Duration: %s\n", s.Duration.Round(time.Millisecond))
	}
	fmt.Fprintf(w, "Files:    %d scanned, %d with PII\n", s.TotalFiles, s.PIIFiles)
	fmt.Fprintf(w, "Findings: %d\n", s.TotalFindings)

	if len(s.Findings) == 0 {
		return
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tMATCH\tEXPOSURE\tFILE")
	for _, f := range s.Findings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.PiiType, f.Match, f.ExposureLevel, f.FilePath)
	}
	tw.Flush()
}
