package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/s-hammon/sigmaker/internal/host"
	"github.com/s-hammon/sigmaker/internal/logging"
	"github.com/s-hammon/sigmaker/internal/sig"
	"github.com/s-hammon/sigmaker/internal/synth"
	"github.com/s-hammon/sigmaker/internal/util"
	"github.com/spf13/cobra"
)

// newConsole logs to the command's stderr and rings the bell only when
// stderr is a terminal.
func newConsole(cmd *cobra.Command) (*host.Console, *logging.LoggerCloser) {
	w := cmd.ErrOrStderr()
	logger := logging.NewLogger(w)

	c := host.NewConsole(logger.Logger, nil)
	if f, ok := w.(*os.File); ok && term.IsTerminal(f.Fd()) {
		c.Bell = f
	}
	return c, logger
}

func newCreateCmd(opts *rootOptions) *cobra.Command {
	var at, style, rng string

	cmd := &cobra.Command{
		Use:   "create [file] --at <address|symbol>",
		Short: "create a unique signature for an address",
		Example: `  sigmaker create ./game --at 0x140001000
  sigmaker create ./libfoo.so --at "foo::bar()" --style code --include-mask
  sigmaker create --pid 4242 --at 0x7f3a10002000 --style crc32`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if at == "" {
				return fmt.Errorf("--at is required")
			}
			st, err := sig.ParseStyle(style)
			if err != nil {
				return err
			}
			cfg, err := opts.loadSettings(cmd.Flags())
			if err != nil {
				return err
			}

			src, err := opts.open(args)
			if err != nil {
				return err
			}
			defer src.close()

			target, err := src.resolve(at)
			if err != nil {
				return err
			}

			console, logger := newConsole(cmd)
			defer logger.Close()

			synthOpts := []synth.Option{synth.WithHost(console)}
			if rng != "" {
				start, end, err := util.ParseRange(rng)
				if err != nil {
					return err
				}
				synthOpts = append(synthOpts, synth.WithSelection(synth.Selection{Start: start, End: end}))
			}

			s := synth.New(src.space, src.decoder, cfg, synthOpts...)
			res, err := s.Create(cmd.Context(), target, st)
			if err != nil {
				return err
			}

			switch {
			case res.Mode == synth.ModeRange:
				logger.Info("signature from range", "instructions", res.Instructions)
			case !res.Unique:
				logger.Warn("signature is not unique; ran out of code before it was", "instructions", res.Instructions)
			default:
				logger.Info("unique signature", "at", src.describe(target), "instructions", res.Instructions, "bytes", res.Pattern.Len())
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.Signature)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "address or symbol to build the signature for")
	cmd.Flags().StringVarP(&style, "style", "s", "ida", "output style: code, ida, fnv1a or crc32")
	cmd.Flags().StringVar(&rng, "range", "", "build from the instructions in start:end instead of growing")

	return cmd
}
