package cmd

import (
	"fmt"

	"github.com/s-hammon/sigmaker"
	"github.com/s-hammon/sigmaker/internal/search"
	"github.com/spf13/cobra"
)

const gridCols = 5

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui [file]",
		Short: "search signatures interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadSettings(cmd.Flags())
			if err != nil {
				return err
			}

			src, err := opts.open(args)
			if err != nil {
				return err
			}
			defer src.close()

			// The screen owns the terminal, so searches stay silent.
			searcher := search.New(src.space, nil)
			find := func(pattern string) ([]uint64, error) {
				return searcher.FindAll(pattern, search.Query{Silent: true, StopAtFirst: cfg.StopAtFirst})
			}

			if err := sigmaker.RunTUI(sigmaker.TUIConfig{
				Find:        find,
				Describe:    src.describe,
				Cols:        gridCols,
				JumpToFirst: cfg.AutoJumpToFound,
			}); err != nil {
				return fmt.Errorf("tui: %v", err)
			}

			return nil
		},
	}
}
