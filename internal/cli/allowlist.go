package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/digimosa/pii-scanner/internal/allowlist"
)

func newAllowlistCommand(global *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allowlist",
		Short: "Manage values that are never reported",
	}
	cmd.AddCommand(newAllowlistAddCommand(global))
	return cmd
}

func newAllowlistAddCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <value>...",
		Short: "Add values to the allowlist file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			if cfg.Allowlist.Path == "" {
				return errors.New("allowlist.path is not configured")
			}

			list, err := allowlist.New(cfg.Allowlist.Path, nil)
			if err != nil {
				return err
			}
			for _, v := range args {
				if err := list.Add(v); err != nil {
					return fmt.Errorf("failed to add %q: %w", v, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d value(s) allowlisted in %s\n", len(args), cfg.Allowlist.Path)
			return nil
		},
	}
}
