package memscan

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/s-hammon/p"
)

// ProcessMemory is the address space of a live process, read through
// /proc/<pid>/mem. Executable mappings count as code.
type ProcessMemory struct {
	pid     int
	mem     *os.File
	regions []Region
}

func NewProcessMemory(pid int) *ProcessMemory {
	return &ProcessMemory{pid: pid}
}

func (pm *ProcessMemory) Open() error {
	mem, err := OpenMem(pm.pid)
	if err != nil {
		return err
	}

	regions, err := ReadMaps(pm.pid)
	if err != nil {
		_ = mem.Close()
		return err
	}

	pm.mem = mem
	pm.regions = regions
	return nil
}

func (pm *ProcessMemory) Close() error {
	if pm.mem == nil {
		return errors.New("trying to close nil file")
	}
	return pm.mem.Close()
}

func (pm *ProcessMemory) Pid() int {
	return pm.pid
}

func (pm *ProcessMemory) Regions() []Region {
	out := make([]Region, len(pm.regions))
	copy(out, pm.regions)
	return out
}

func (pm *ProcessMemory) Bounds() (uint64, uint64) {
	if len(pm.regions) == 0 {
		return 0, 0
	}
	return pm.regions[0].Start, pm.regions[len(pm.regions)-1].End
}

func (pm *ProcessMemory) ReadAt(b []byte, addr uint64) (int, error) {
	if pm.mem == nil {
		return 0, errors.New("memory not open")
	}

	n, err := pm.mem.ReadAt(b, int64(addr))
	if err != nil {
		return n, fmt.Errorf("read 0x%x (%d): %v", addr, len(b), err)
	}
	return n, nil
}

func (pm *ProcessMemory) IsCode(addr uint64) bool {
	r, ok := RegionAt(pm.regions, addr)
	return ok && r.Executable()
}

func FindPidBySubstring(substr string) (int, error) {
	ents, err := os.ReadDir("/proc")
	if err != nil {
		return 0, err
	}

	for _, e := range ents {
		if !e.IsDir() {
			continue
		}

		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}

		commBytes, err := os.ReadFile(p.Format("/proc/%d/comm", pid))
		if err != nil {
			continue
		}

		comm := strings.TrimSpace(string(commBytes))
		if strings.Contains(comm, substr) {
			return pid, nil
		}
	}

	return 0, fmt.Errorf("process containing %s not found", substr)
}

func ReadMaps(pid int) ([]Region, error) {
	f, err := os.Open(p.Format("/proc/%d/maps", pid))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var regs []Region
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		addr := strings.Split(fields[0], "-")
		if len(addr) != 2 {
			continue
		}

		start, err1 := strconv.ParseUint(addr[0], 16, 64)
		end, err2 := strconv.ParseUint(addr[1], 16, 64)
		if err1 != nil || err2 != nil {
			continue
		}

		var name string
		if len(fields) >= 6 {
			name = fields[5]
		}

		regs = append(regs, Region{Start: start, End: end, Perms: fields[1], Name: name})
	}

	return regs, scanner.Err()
}

func OpenMem(pid int) (*os.File, error) {
	return os.OpenFile(p.Format("/proc/%d/mem", pid), os.O_RDONLY, 0)
}
