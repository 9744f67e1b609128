package system

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/hpc-buildtools/ebpkg/internal/utils/logger"
	"github.com/hpc-buildtools/ebpkg/internal/utils/slice"
)

// ErrSystemProbe marks a probe for which every detection method failed.
var ErrSystemProbe = errors.New("system probe failed")

var (
	CPUInfoFile   = "/proc/cpuinfo"
	OsReleaseFile = "/etc/os-release"
)

const (
	SystemTypeLinux  = "Linux"
	SystemTypeDarwin = "Darwin"
)

var sharedLibExts = map[string]string{
	SystemTypeLinux:  "so",
	SystemTypeDarwin: "dylib",
}

// Info is a snapshot of every probe, as printed by the sysinfo command.
type Info struct {
	CoreCount     int    `json:"core_count" yaml:"core_count"`
	CPUVendor     string `json:"cpu_vendor" yaml:"cpu_vendor"`
	CPUModel      string `json:"cpu_model" yaml:"cpu_model"`
	SystemType    string `json:"system_type" yaml:"system_type"`
	PlatformName  string `json:"platform_name" yaml:"platform_name"`
	SharedLibExt  string `json:"shared_lib_ext" yaml:"shared_lib_ext"`
	SystemName    string `json:"system_name" yaml:"system_name"`
	SystemVersion string `json:"system_version" yaml:"system_version"`
	GoOS          string `json:"goos" yaml:"goos"`
	GoArch        string `json:"goarch" yaml:"goarch"`
}

// Collect runs every probe. Facts whose probe failed are left empty and the
// failures are returned joined; the Info is always non-nil.
func Collect() (*Info, error) {
	info := &Info{
		CPUModel:      CPUModel(),
		SystemName:    SystemName(),
		SystemVersion: SystemVersion(),
		GoOS:          runtime.GOOS,
		GoArch:        runtime.GOARCH,
	}

	var errs []error
	var err error
	if info.CoreCount, err = CoreCount(); err != nil {
		errs = append(errs, err)
	}
	if info.CPUVendor, err = CPUVendorName(); err != nil {
		errs = append(errs, err)
	}
	if info.SystemType, err = SystemType(); err != nil {
		errs = append(errs, err)
	}
	if info.PlatformName, err = PlatformName(true); err != nil {
		errs = append(errs, err)
	}
	if info.SharedLibExt, err = SharedLibExt(); err != nil {
		errs = append(errs, err)
	}
	return info, errors.Join(errs...)
}

// SystemType returns the kernel name, e.g. Linux or Darwin.
func SystemType() (string, error) {
	u, err := uname()
	if err != nil {
		logger.Logger().Errorf("Failed to determine system type: %v", err)
		return "", fmt.Errorf("%w: failed to determine system type: %v", ErrSystemProbe, err)
	}
	if u.Sysname == "" {
		return "", fmt.Errorf("%w: failed to determine system type: empty kernel name", ErrSystemProbe)
	}
	return u.Sysname, nil
}

// SharedLibExt returns the shared library extension of the running system.
func SharedLibExt() (string, error) {
	systemType, err := SystemType()
	if err != nil {
		return "", err
	}
	return SharedLibExtFor(systemType)
}

// SharedLibExtFor returns the shared library extension used on systemType.
func SharedLibExtFor(systemType string) (string, error) {
	if ext, ok := sharedLibExts[systemType]; ok {
		return ext, nil
	}
	return "", fmt.Errorf("%w: unable to determine extension for shared libraries, unknown system type %q (known: %s)",
		ErrSystemProbe, systemType, strings.Join(slice.SortedStringMapKeys(sharedLibExts), ", "))
}

// PlatformName returns a GNU-style triple such as x86_64-unknown-linux or
// x86_64-apple-darwin. With withVersion, Linux gets a -gnu suffix and Darwin
// the kernel release.
func PlatformName(withVersion bool) (string, error) {
	u, err := uname()
	if err != nil {
		return "", fmt.Errorf("%w: failed to determine platform name: %v", ErrSystemProbe, err)
	}

	var vendor, suffix string
	switch u.Sysname {
	case SystemTypeLinux:
		vendor, suffix = "unknown", "-gnu"
	case SystemTypeDarwin:
		vendor, suffix = "apple", u.Release
	default:
		return "", fmt.Errorf("%w: failed to determine platform name, unknown system type %q", ErrSystemProbe, u.Sysname)
	}

	name := fmt.Sprintf("%s-%s-%s", u.Machine, vendor, strings.ToLower(u.Sysname))
	if withVersion {
		name += suffix
	}
	return name, nil
}
