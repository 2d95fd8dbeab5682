package cmd

import (
	"fmt"
	"strings"

	"github.com/s-hammon/sigmaker/internal/search"
	"github.com/spf13/cobra"
)

func newFindCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find [file] <signature...>",
		Short: "list every address a signature matches",
		Example: `  sigmaker find ./game 48 8B 05 ? ? ? ? 48 85 C0
  sigmaker find ./game '\x48\x8B\x05\x00\x00\x00\x00 xxx????'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadSettings(cmd.Flags())
			if err != nil {
				return err
			}

			n := opts.fileArgs()
			if len(args) <= n {
				return fmt.Errorf("missing signature")
			}

			src, err := opts.open(args[:n])
			if err != nil {
				return err
			}
			defer src.close()

			console, logger := newConsole(cmd)
			defer logger.Close()

			matches, err := search.New(src.space, console).FindAll(strings.Join(args[n:], " "), search.Query{
				StopAtFirst: cfg.StopAtFirst,
				JumpToFirst: cfg.AutoJumpToFound,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, addr := range matches {
				hex := fmt.Sprintf("0x%X", addr)
				if desc := src.describe(addr); desc != hex {
					fmt.Fprintf(out, "%s\t%s\n", hex, desc)
				} else {
					fmt.Fprintln(out, hex)
				}
			}
			return nil
		},
	}

	return cmd
}
