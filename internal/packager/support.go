package packager

import (
	"fmt"

	"github.com/hpc-buildtools/ebpkg/internal/config"
	"github.com/hpc-buildtools/ebpkg/internal/utils/logger"
	"github.com/hpc-buildtools/ebpkg/internal/utils/shell"
)

// RpmBuildTool is required by FPM to produce RPM packages.
const RpmBuildTool = "rpmbuild"

// CheckSupport verifies the tools needed to package with cfg are on PATH.
func CheckSupport(cfg *config.GlobalConfig) error {
	log := logger.Logger()
	log.Warnf("Support for packaging installed software is experimental")

	pkgTool := cfg.PackageTool
	pkgToolPath, err := shell.LookPath(pkgTool)
	if err != nil {
		log.Errorf("Selected packaging tool '%s' not found: %v", pkgTool, err)
		return fmt.Errorf("%w: selected packaging tool '%s' not found", config.ErrConfiguration, pkgTool)
	}
	log.Infof("Selected packaging tool '%s' found at %s", pkgTool, pkgToolPath)

	if pkgTool == config.PkgToolFPM && cfg.PackageType == config.PkgTypeRPM {
		rpmbuildPath, err := shell.LookPath(RpmBuildTool)
		if err != nil {
			log.Errorf("Required tool '%s' not found: %v", RpmBuildTool, err)
			return fmt.Errorf("%w: %s is required when generating RPM packages with FPM, but was not found",
				config.ErrConfiguration, RpmBuildTool)
		}
		log.Infof("Required tool '%s' found at %s", RpmBuildTool, rpmbuildPath)
	}

	return nil
}
