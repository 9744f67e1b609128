package packager

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/hpc-buildtools/ebpkg/internal/config"
	"github.com/hpc-buildtools/ebpkg/internal/ospackage"
	"github.com/hpc-buildtools/ebpkg/internal/pkgnaming"
	"github.com/hpc-buildtools/ebpkg/internal/utils/logger"
	"github.com/hpc-buildtools/ebpkg/internal/utils/shell"
)

// WorkDirPrefix prefixes every package work directory.
const WorkDirPrefix = "eb-pkgs-"

// ErrIO marks a failure to create or use the package work directory.
var ErrIO = errors.New("I/O error")

var createScratchFile = os.CreateTemp

// Packager turns completed installations into distribution packages.
// Invocations are not safe to run concurrently on the same Packager.
type Packager struct {
	cfg      *config.ConfigHelpers
	resolver *pkgnaming.Resolver
}

func New(cfg *config.GlobalConfig, resolver *pkgnaming.Resolver) *Packager {
	return &Packager{cfg: config.NewConfigHelpers(cfg), resolver: resolver}
}

// Package packages build with the configured tool and returns the directory
// holding the produced packages.
func (p *Packager) Package(build *ospackage.Build) (string, error) {
	log := logger.Logger()

	switch tool := p.cfg.PackageTool(); tool {
	case config.PkgToolFPM:
		return p.packageWithFpm(build)
	default:
		log.Errorf("Unknown packaging tool specified: %s", tool)
		return "", fmt.Errorf("%w: unknown packaging tool specified: %s", config.ErrConfiguration, tool)
	}
}

func (p *Packager) packageWithFpm(build *ospackage.Build) (string, error) {
	log := logger.Logger()
	pkgType := p.cfg.PackageType()

	naming, err := p.resolver.Active()
	if err != nil {
		return "", err
	}

	workDir, err := createWorkDir(p.cfg.TempDir())
	if err != nil {
		log.Errorf("Failed to create package work directory: %v", err)
		return "", err
	}
	log.Infof("Will be creating %s package(s) in %s", pkgType, workDir)

	pkgName := naming.Name(build.Spec)
	pkgVer := naming.Version(build.Spec)
	pkgRel := naming.Release()
	log.Debugf("Got the naming scheme values for (name, version, release): (%s, %s, %s)", pkgName, pkgVer, pkgRel)

	deps := build.PackageDependencies()
	depNames := make([]string, 0, len(deps))
	for _, dep := range deps {
		depName := naming.Name(dep)
		log.Debugf("The dep added looks like %+v, package name %s", dep, depName)
		depNames = append(depNames, depName)
	}

	cmdStr := FpmCommand{
		WorkDir:      workDir,
		Name:         pkgName,
		PackageType:  pkgType,
		Version:      pkgVer,
		Iteration:    pkgRel,
		Dependencies: depNames,
		InstallDir:   build.InstallDir,
		ModuleFile:   build.ModuleFile,
	}.String()
	log.Debugf("The flattened command looks like: %s", cmdStr)

	if _, err := shell.ExecCmdWithStream(cmdStr, workDir, nil); err != nil {
		log.Errorf("Packaging %s with %s failed: %v", pkgName, config.PkgToolFPM, err)
		return "", fmt.Errorf("packaging %s with %s failed: %w", pkgName, config.PkgToolFPM, err)
	}

	log.Infof("Created %s package(s) in %s", pkgType, workDir)
	return workDir, nil
}

// createWorkDir creates a fresh work directory under baseDir and checks it
// can be used as the subprocess working directory.
func createWorkDir(baseDir string) (string, error) {
	workDir, err := os.MkdirTemp(baseDir, WorkDirPrefix)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create work directory under %s: %v", ErrIO, baseDir, err)
	}
	f, err := createScratchFile(workDir, ".write-check-")
	if err != nil {
		os.RemoveAll(workDir)
		return "", fmt.Errorf("%w: work directory %s is not writable: %v", ErrIO, workDir, err)
	}
	name := f.Name()
	f.Close()
	if err := os.Remove(name); err != nil {
		os.RemoveAll(workDir)
		return "", fmt.Errorf("%w: cleaning up work directory %s: %v", ErrIO, workDir, err)
	}
	return workDir, nil
}

// FpmCommand holds the values of one FPM invocation.
type FpmCommand struct {
	WorkDir      string
	Name         string
	PackageType  string
	Version      string
	Iteration    string
	Dependencies []string
	InstallDir   string
	ModuleFile   string
}

// Args returns the command tokens, already shell-quoted where needed:
// fpm --workdir W --name N --provides N -t T -s dir --version V --iteration I
// [--depends D]... INSTALLDIR MODULEFILE
func (c FpmCommand) Args() []string {
	args := []string{
		config.PkgToolFPM,
		"--workdir", quote(c.WorkDir),
		"--name", quote(c.Name),
		"--provides", quote(c.Name),
		"-t", quote(c.PackageType),
		"-s", "dir",
		"--version", quote(c.Version),
		"--iteration", quote(c.Iteration),
	}
	for _, dep := range c.Dependencies {
		args = append(args, "--depends", quote(dep))
	}
	return append(args, quote(c.InstallDir), quote(c.ModuleFile))
}

// String joins Args with single spaces.
func (c FpmCommand) String() string {
	return strings.Join(c.Args(), " ")
}

// quote returns s unchanged when the shell would read it literally, and a
// quoted form otherwise.
func quote(s string) string {
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		// Quote rejects strings it cannot represent, such as ones holding NUL bytes.
		return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	}
	return q
}
