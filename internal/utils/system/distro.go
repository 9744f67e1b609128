package system

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/host"

	"github.com/hpc-buildtools/ebpkg/internal/utils/logger"
	"github.com/hpc-buildtools/ebpkg/internal/utils/shell"
)

const (
	UnknownSystemName    = "UNKNOWN_SYSTEM_NAME"
	UnknownSystemVersion = "UNKNOWN_SYSTEM_VERSION"
)

var systemNameAliases = map[string]string{
	"red hat enterprise linux server": "RHEL",
	"red hat enterprise linux":        "RHEL",
	"scientific linux sl":             "SL",
	"scientific linux":                "SL",
}

// SLES 11 service packs can only be told apart by kernel version.
var suse11ServicePacks = []struct {
	kernel []int
	suffix string
}{
	{[]int{2, 6, 27}, ""},
	{[]int{2, 6, 32}, "_SP1"},
	{[]int{3, 0}, "_SP2"},
}

// platformInformation is replaced in tests.
var platformInformation = host.PlatformInformation

// readOsRelease returns the KEY=value pairs of an os-release file with
// surrounding quotes removed.
func readOsRelease(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	fields := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"'`)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return fields, nil
}

// distroField tries os-release, then lsb_release, then the gopsutil platform
// query, and returns the first non-empty answer.
func distroField(osReleaseKey, lsbFlag string, fromPlatform func(platform, version string) string) string {
	log := logger.Logger()

	if fields, err := readOsRelease(OsReleaseFile); err == nil {
		if v := fields[osReleaseKey]; v != "" {
			return v
		}
	} else {
		log.Debugf("Could not read %s: %v", OsReleaseFile, err)
	}

	if out, err := shell.ExecCmd("lsb_release "+lsbFlag, shell.CurrentDir, nil); err == nil {
		if v := strings.TrimSpace(out); v != "" {
			return v
		}
	} else {
		log.Debugf("lsb_release %s failed: %v", lsbFlag, err)
	}

	platform, _, version, err := platformInformation()
	if err != nil {
		log.Debugf("Platform information unavailable: %v", err)
		return ""
	}
	return strings.TrimSpace(fromPlatform(platform, version))
}

// SystemName returns the lower-cased distribution name, e.g. centos, debian
// or ubuntu, with a few long names shortened (RHEL, SL).
func SystemName() string {
	name := strings.ToLower(distroField("NAME", "-si", func(platform, _ string) string { return platform }))
	if name == "" {
		return UnknownSystemName
	}
	if alias, ok := systemNameAliases[name]; ok {
		return alias
	}
	return name
}

// SystemVersion returns the distribution version. SUSE 11 versions carry a
// service pack suffix such as 11_SP1.
func SystemVersion() string {
	version := distroField("VERSION_ID", "-sr", func(_, version string) string { return version })
	if version == "" {
		return UnknownSystemVersion
	}

	if version == "11" && strings.Contains(strings.ToLower(SystemName()), "suse") {
		u, err := uname()
		if err != nil {
			logger.Logger().Warnf("Could not read kernel release to detect SUSE service pack: %v", err)
			return version + "_UNKNOWN_SP"
		}
		version += suseServicePack(u.Release)
	}
	return version
}

func suseServicePack(kernelRelease string) string {
	kernel := parseKernelVersion(kernelRelease)
	for _, sp := range suse11ServicePacks {
		if hasIntPrefix(kernel, sp.kernel) {
			return sp.suffix
		}
	}
	return "_UNKNOWN_SP"
}

// parseKernelVersion returns the leading dotted numbers of a kernel release,
// so 2.6.32.12-0.7-default gives [2 6 32 12].
func parseKernelVersion(release string) []int {
	if i := strings.IndexAny(release, "-+_ "); i >= 0 {
		release = release[:i]
	}
	var parts []int
	for _, p := range strings.Split(release, ".") {
		n, err := strconv.Atoi(p)
		if err != nil {
			break
		}
		parts = append(parts, n)
	}
	return parts
}

func hasIntPrefix(s, prefix []int) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := range prefix {
		if s[i] != prefix[i] {
			return false
		}
	}
	return true
}
