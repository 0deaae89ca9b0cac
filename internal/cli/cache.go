package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/digimosa/pii-scanner/internal/cache"
)

func newCacheCommand(global *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the detection cache",
	}
	cmd.AddCommand(newCacheClearCommand(global))
	return cmd
}

func newCacheClearCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached detection result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			if cfg.Cache.RedisURL == "" {
				return errors.New("cache.redis_url is not configured")
			}

			log, err := newLogger(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer log.Sync()

			store, err := cache.NewRedisStore(cache.Config{
				RedisURL:  cfg.Cache.RedisURL,
				KeyPrefix: cfg.Cache.KeyPrefix,
				TTL:       cfg.Cache.TTL,
			}, log)
			if err != nil {
				return err
			}
			defer store.Close()

			start := time.Now()
			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cache %q cleared in %s\n", cfg.Cache.KeyPrefix, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}
