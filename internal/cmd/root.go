package cmd

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/s-hammon/sigmaker/internal/settings"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// toggle binds one settings field to a persistent flag.
type toggle struct {
	name  string
	usage string
	field func(*settings.Settings) *bool
}

var toggles = []toggle{
	{"auto-jump", "focus the first search match", func(s *settings.Settings) *bool { return &s.AutoJumpToFound }},
	{"use-range", "build from --range instead of growing", func(s *settings.Settings) *bool { return &s.UseSelectedRange }},
	{"show-mnemonics", "log each instruction while a signature grows", func(s *settings.Settings) *bool { return &s.ShowMnemonics }},
	{"copy-to-clipboard", "copy created signatures to the clipboard", func(s *settings.Settings) *bool { return &s.CopyToClipboard }},
	{"include-mask", "append an xx?? mask to code style signatures", func(s *settings.Settings) *bool { return &s.IncludeMask }},
	{"allow-dangerous", "allow signatures outside recognized code", func(s *settings.Settings) *bool { return &s.AllowDangerousRegions }},
	{"stop-at-first", "stop searching after the first match", func(s *settings.Settings) *bool { return &s.StopAtFirst }},
	{"double-wildcard", "render ida style wildcards as ??", func(s *settings.Settings) *bool { return &s.UseDoubleWildcard }},
	{"alt-wildcard", `render code style wildcards as \x2A`, func(s *settings.Settings) *bool { return &s.UseAltWildcard }},
}

type rootOptions struct {
	config  string
	pid     int
	process string
	raw     bool
	base    string
	arch    string
}

// loadSettings reads the settings file and applies any toggle flags given on
// the command line.
func (o *rootOptions) loadSettings(flags *pflag.FlagSet) (settings.Settings, error) {
	cfg, err := settings.Load(o.config)
	if err != nil {
		return cfg, err
	}

	for _, t := range toggles {
		if !flags.Changed(t.name) {
			continue
		}
		v, err := flags.GetBool(t.name)
		if err != nil {
			return cfg, err
		}
		*t.field(&cfg) = v
	}
	return cfg, nil
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "sigmaker",
		Short: "create and find unique byte signatures in executables",
		Long: `sigmaker builds byte signatures that match exactly one place in a binary
or a running process, wildcarding relocatable operands so the signature
survives rebuilds and relocation.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.config, "config", settings.DefaultPath(), "settings file")
	pf.IntVar(&opts.pid, "pid", 0, "attach to the process with this pid")
	pf.StringVar(&opts.process, "process", "", "attach to the first process whose name contains this")
	pf.BoolVar(&opts.raw, "raw", false, "treat the file as a flat code blob")
	pf.StringVar(&opts.base, "base", "0", "load address of a --raw file")
	pf.StringVar(&opts.arch, "arch", "", "instruction set (amd64, arm64); detected from the image when empty")
	defaults := settings.Default()
	for _, t := range toggles {
		pf.Bool(t.name, *t.field(&defaults), t.usage)
	}

	root.AddCommand(
		newCreateCmd(opts),
		newFindCmd(opts),
		newTUICmd(opts),
		newSettingsCmd(opts),
		newSchemaCmd(),
	)

	return root
}

func Execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	ctx := context.Background()
	var err error
	if f, ok := stdout.(*os.File); ok && term.IsTerminal(f.Fd()) {
		err = fang.Execute(ctx, root, fang.WithNotifySignal(os.Interrupt))
	} else {
		err = root.ExecuteContext(ctx)
	}
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			return exitError.ExitCode()
		}

		return 1
	}

	return 0
}
