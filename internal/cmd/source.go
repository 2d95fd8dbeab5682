package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/s-hammon/sigmaker/internal/disasm"
	"github.com/s-hammon/sigmaker/internal/image"
	"github.com/s-hammon/sigmaker/internal/memscan"
	"github.com/s-hammon/sigmaker/internal/util"
)

// source is the address space a command works on: a loaded image or a live
// process.
type source struct {
	space   memscan.Space
	decoder disasm.Decoder
	image   *image.Image
	close   func() error
}

func (o *rootOptions) live() bool {
	return o.pid != 0 || o.process != ""
}

// fileArgs is the number of leading positional arguments naming the file,
// which live processes do not take.
func (o *rootOptions) fileArgs() int {
	if o.live() {
		return 0
	}
	return 1
}

func (o *rootOptions) open(args []string) (*source, error) {
	if o.live() {
		return o.openProcess()
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("missing file (or --pid/--process)")
	}
	return o.openFile(args[0])
}

func (o *rootOptions) openFile(path string) (*source, error) {
	var (
		im  *image.Image
		err error
	)
	if o.raw {
		base, perr := util.ParseAddress(o.base)
		if perr != nil {
			return nil, perr
		}
		im, err = image.OpenRaw(path, base, "")
	} else {
		im, err = image.Open(path)
	}
	if err != nil {
		return nil, err
	}

	arch := im.Arch
	if o.arch != "" || arch == "" {
		if arch, err = o.resolveArch(); err != nil {
			return nil, err
		}
	}
	dec, err := disasm.New(arch)
	if err != nil {
		return nil, err
	}

	return &source{space: im, decoder: dec, image: im, close: func() error { return nil }}, nil
}

func (o *rootOptions) openProcess() (*source, error) {
	pid := o.pid
	if pid == 0 {
		var err error
		if pid, err = memscan.FindPidBySubstring(o.process); err != nil {
			return nil, err
		}
	}

	pm := memscan.NewProcessMemory(pid)
	if err := pm.Open(); err != nil {
		return nil, fmt.Errorf("open process %d: %w", pid, err)
	}

	arch, err := o.resolveArch()
	if err != nil {
		_ = pm.Close()
		return nil, err
	}
	dec, err := disasm.New(arch)
	if err != nil {
		_ = pm.Close()
		return nil, err
	}

	return &source{space: pm, decoder: dec, close: pm.Close}, nil
}

// resolveArch returns --arch, or the host architecture.
func (o *rootOptions) resolveArch() (disasm.Arch, error) {
	if o.arch == "" {
		return disasm.ParseArch(runtime.GOARCH)
	}
	return disasm.ParseArch(o.arch)
}

// resolve turns an address or a symbol name into an address.
func (src *source) resolve(s string) (uint64, error) {
	hex := strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")
	if src.image != nil && !hex {
		if sym, ok := src.image.Lookup(s); ok {
			return sym.Addr, nil
		}
	}
	return util.ParseAddress(s)
}

func (src *source) describe(addr uint64) string {
	if src.image != nil {
		return src.image.Describe(addr)
	}
	if r, ok := memscan.RegionAt(src.space.Regions(), addr); ok && r.Name != "" {
		return fmt.Sprintf("%s+0x%X", r.Name, addr-r.Start)
	}
	return fmt.Sprintf("0x%X", addr)
}
