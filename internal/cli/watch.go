package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/digimosa/pii-scanner/internal/config"
	"github.com/digimosa/pii-scanner/internal/watch"
)

func newWatchCommand(global *GlobalOptions) *cobra.Command {
	opts := &scanOptions{}

	cmd := &cobra.Command{
		Use:   "watch <directory>",
		Short: "Scan a directory and rescan it whenever documents change",
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

			root := args[0]
			out := cmd.OutOrStdout()
			rescan := func() {
				res, err := runScan(ctx, a, root, opts.notifier(cmd, cfg))
				if err != nil {
					if ctx.Err() == nil {
						a.log.Error("scan failed", zap.String("root", root), zap.Error(err))
					}
					return
				}
				if opts.JSON {
					if err := writeJSON(out, res.Statistics); err != nil {
						a.log.Error("failed to write statistics", zap.Error(err))
					}
					return
				}
				printResults(out, res)
			}

			rescan()
			if ctx.Err() != nil {
				return nil
			}

			if global.ConfigPath != "" {
				err := config.Watch(global.ConfigPath, a.reload, func(err error) {
					a.log.Warn("invalid configuration change", zap.Error(err))
				})
				if err != nil {
					a.log.Warn("config reload disabled", zap.Error(err))
				}
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (Ctrl+C to stop)\n", root)
			w := watch.New(cfg.Watch.Debounce, a.log)
			return w.Run(ctx, root, rescan)
		},
	}

	cmd.Flags().StringVarP(&opts.Profile, "profile", "p", "", "Detection profile: standard|benin")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "Parallel workers (0=config)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print statistics of each scan as JSON")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Hide progress output")

	return cmd
}
