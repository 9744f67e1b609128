package packager

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	rpmutils "github.com/sassoftware/go-rpmutils"

	"github.com/hpc-buildtools/ebpkg/internal/utils/logger"
)

// BuiltPackage describes one package file produced in a work directory.
// Only Path is guaranteed; the rest is filled in for formats that can be read.
type BuiltPackage struct {
	Path     string   `json:"path" yaml:"path"`
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	Version  string   `json:"version,omitempty" yaml:"version,omitempty"`
	Release  string   `json:"release,omitempty" yaml:"release,omitempty"`
	Arch     string   `json:"arch,omitempty" yaml:"arch,omitempty"`
	Requires []string `json:"requires,omitempty" yaml:"requires,omitempty"`
}

// ListPackages returns the package files in workDir, sorted by path. Files
// whose metadata cannot be read are still listed, with only Path set.
func ListPackages(workDir string) ([]BuiltPackage, error) {
	log := logger.Logger()

	entries, err := os.ReadDir(workDir)
	if err != nil {
		return nil, fmt.Errorf("%w: reading work directory %s: %v", ErrIO, workDir, err)
	}

	var pkgs []BuiltPackage
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(workDir, entry.Name())

		var (
			pkg     *BuiltPackage
			readErr error
		)
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".rpm":
			pkg, readErr = inspectRpm(path)
		case ".deb":
			pkg, readErr = inspectDeb(path)
		default:
			continue
		}
		if readErr != nil {
			log.Warnf("Could not read package metadata from %s: %v", path, readErr)
			pkg = &BuiltPackage{Path: path}
		}
		pkgs = append(pkgs, *pkg)
	}

	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Path < pkgs[j].Path })
	return pkgs, nil
}

func inspectRpm(path string) (*BuiltPackage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rpm: %w", err)
	}
	defer f.Close()

	hdr, err := rpmutils.ReadHeader(f)
	if err != nil {
		return nil, fmt.Errorf("reading rpm header: %w", err)
	}
	nevra, err := hdr.GetNEVRA()
	if err != nil {
		return nil, fmt.Errorf("reading rpm NEVRA: %w", err)
	}
	requires, err := hdr.GetStrings(rpmutils.REQUIRENAME)
	if err != nil {
		// Packages without requirements have no REQUIRENAME tag.
		requires = nil
	}

	return &BuiltPackage{
		Path:     path,
		Name:     nevra.Name,
		Version:  nevra.Version,
		Release:  nevra.Release,
		Arch:     nevra.Arch,
		Requires: filterRpmRequires(requires),
	}, nil
}

// filterRpmRequires drops the rpmlib() capabilities rpmbuild adds to every package.
func filterRpmRequires(requires []string) []string {
	var out []string
	for _, r := range requires {
		if strings.HasPrefix(r, "rpmlib(") {
			continue
		}
		out = append(out, r)
	}
	return out
}
