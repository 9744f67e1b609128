package system

import (
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/cpu"

	"github.com/hpc-buildtools/ebpkg/internal/utils/logger"
	"github.com/hpc-buildtools/ebpkg/internal/utils/shell"
)

const (
	VendorIntel = "Intel"
	VendorAMD   = "AMD"

	UnknownCPUModel = "UNKNOWN"
)

var cpuVendors = map[string]string{
	"GenuineIntel": VendorIntel,
	"AuthenticAMD": VendorAMD,
}

var (
	vendorIDRe  = regexp.MustCompile(`(?m)^vendor_id\s+:\s*(\S+)\s*$`)
	modelNameRe = regexp.MustCompile(`(?m)^model name\s+:\s*(.+)\s*$`)
)

// Replaced in tests.
var (
	logicalCPUCount = func() (int, error) { return cpu.Counts(true) }
	numCPU          = runtime.NumCPU
)

func readCPUInfo() (string, error) {
	data, err := os.ReadFile(CPUInfoFile)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func sysctl(name string) (string, error) {
	out, err := shell.ExecCmd("sysctl -n "+name, shell.CurrentDir, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CoreCount returns the number of logical CPUs.
func CoreCount() (int, error) {
	log := logger.Logger()

	if n, err := logicalCPUCount(); err == nil && n > 0 {
		return n, nil
	} else if err != nil {
		log.Debugf("Native CPU count unavailable: %v", err)
	}

	if n := numCPU(); n > 0 {
		return n, nil
	}

	if cpuinfo, err := readCPUInfo(); err == nil {
		if n := strings.Count(cpuinfo, "processor\t:"); n > 0 {
			return n, nil
		}
	} else {
		log.Debugf("Could not read %s: %v", CPUInfoFile, err)
	}

	if out, err := sysctl("hw.ncpu"); err == nil {
		if n, err := strconv.Atoi(out); err == nil && n > 0 {
			return n, nil
		}
	}

	log.Errorf("Can not determine number of cores on this system")
	return 0, fmt.Errorf("%w: can not determine number of cores on this system", ErrSystemProbe)
}

// CPUVendorName returns VendorIntel or VendorAMD when the vendor is known,
// and otherwise the first word of the BSD hw.model string.
func CPUVendorName() (string, error) {
	if cpuinfo, err := readCPUInfo(); err == nil {
		if m := vendorIDRe.FindStringSubmatch(cpuinfo); m != nil {
			if vendor, ok := cpuVendors[m[1]]; ok {
				return vendor, nil
			}
		}
	}

	// Darwin
	if out, err := sysctl("machdep.cpu.vendor"); err == nil {
		if vendor, ok := cpuVendors[out]; ok {
			return vendor, nil
		}
	}

	// BSD
	if out, err := sysctl("hw.model"); err == nil && out != "" {
		return strings.Fields(out)[0], nil
	}

	logger.Logger().Errorf("Could not detect CPU vendor")
	return "", fmt.Errorf("%w: could not detect CPU vendor", ErrSystemProbe)
}

// CPUModel returns the CPU model string, e.g.
// "Intel(R) Core(TM) i5-2540M CPU @ 2.60GHz", or UnknownCPUModel.
func CPUModel() string {
	if cpuinfo, err := readCPUInfo(); err == nil {
		if m := modelNameRe.FindStringSubmatch(cpuinfo); m != nil {
			return strings.TrimSpace(m[1])
		}
	}

	if out, err := sysctl("machdep.cpu.brand_string"); err == nil && out != "" {
		return out
	}
	return UnknownCPUModel
}
