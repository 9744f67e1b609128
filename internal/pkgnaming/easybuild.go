package pkgnaming

import (
	"strings"

	"github.com/hpc-buildtools/ebpkg/internal/ospackage"
)

const EasyBuildPNSName = "EasyBuildPNS"

// EasyBuildPNS names packages after the installation they come from:
// <name>-<version>[-<toolchain name>-<toolchain version>]<versionsuffix>.
type EasyBuildPNS struct{}

func (EasyBuildPNS) Name(spec ospackage.Spec) string {
	return spec.Name + "-" + FullVersion(spec)
}

func (EasyBuildPNS) Version(spec ospackage.Spec) string {
	return spec.Version
}

func (EasyBuildPNS) Release() string {
	return "1"
}

// FullVersion returns the version with toolchain and suffix, e.g.
// "2.7.9-GCC-4.9.2-bare". The dummy toolchain is left out.
func FullVersion(spec ospackage.Spec) string {
	parts := []string{spec.Version}
	if !spec.Toolchain.IsDummy() {
		parts = append(parts, spec.Toolchain.Name+"-"+spec.Toolchain.Version)
	}
	return strings.Join(parts, "-") + spec.VersionSuffix
}
