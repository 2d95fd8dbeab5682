package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/s-hammon/sigmaker/internal/settings"
	"github.com/spf13/cobra"
)

func newSettingsCmd(opts *rootOptions) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "show the effective settings, or save them with --save",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadSettings(cmd.Flags())
			if err != nil {
				return err
			}

			if save {
				if err := settings.Save(opts.config, cfg); err != nil {
					return err
				}
			}

			bts, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal settings: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(bts))
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "write the effective settings to --config")
	return cmd
}
