package packager

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hpc-buildtools/ebpkg/internal/config"
	"github.com/hpc-buildtools/ebpkg/internal/ospackage"
	"github.com/hpc-buildtools/ebpkg/internal/pkgnaming"
	"github.com/hpc-buildtools/ebpkg/internal/utils/shell"
)

var gcc = ospackage.Toolchain{Name: "GCC", Version: "4.9.2"}

func testConfig(t *testing.T) *config.GlobalConfig {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.TempDir = t.TempDir()
	return cfg
}

func newTestPackager(cfg *config.GlobalConfig) *Packager {
	return New(cfg, pkgnaming.NewResolver(pkgnaming.DefaultRegistry(), cfg.PackageNamingScheme))
}

func zlibBuild(deps ...ospackage.Spec) *ospackage.Build {
	return &ospackage.Build{
		Spec:         ospackage.Spec{Name: "zlib", Version: "1.2.8", Toolchain: gcc},
		Dependencies: deps,
		InstallDir:   "/apps/software/zlib/1.2.8-GCC-4.9.2",
		ModuleFile:   "/apps/modules/all/zlib/1.2.8-GCC-4.9.2",
	}
}

func mockFpm(t *testing.T, err error) *shell.MockExecutor {
	t.Helper()
	originalExecutor := shell.Default
	t.Cleanup(func() { shell.Default = originalExecutor })

	mock := shell.NewMockExecutor([]shell.MockCommand{
		{Pattern: "^fpm ", Output: "Created package {:path=>\"zlib.rpm\"}\n", Error: err},
	})
	shell.Default = mock
	return mock
}

func TestFpmCommandString(t *testing.T) {
	cmd := FpmCommand{
		WorkDir:      "/tmp/eb-pkgs-1",
		Name:         "zlib-1.2.8-GCC-4.9.2",
		PackageType:  "rpm",
		Version:      "1.2.8",
		Iteration:    "1",
		Dependencies: []string{"GCC-4.9.2"},
		InstallDir:   "/apps/software/zlib/1.2.8-GCC-4.9.2",
		ModuleFile:   "/apps/modules/all/zlib/1.2.8-GCC-4.9.2",
	}
	want := "fpm --workdir /tmp/eb-pkgs-1 --name zlib-1.2.8-GCC-4.9.2 --provides zlib-1.2.8-GCC-4.9.2" +
		" -t rpm -s dir --version 1.2.8 --iteration 1 --depends GCC-4.9.2" +
		" /apps/software/zlib/1.2.8-GCC-4.9.2 /apps/modules/all/zlib/1.2.8-GCC-4.9.2"
	if got := cmd.String(); got != want {
		t.Errorf("String() mismatch:\n got: %s\nwant: %s", got, want)
	}
}

func TestFpmCommandQuotesValues(t *testing.T) {
	cmd := FpmCommand{
		WorkDir:      "/tmp/eb-pkgs-1",
		Name:         "tool",
		PackageType:  "rpm",
		Version:      "1.0",
		Iteration:    "1",
		Dependencies: []string{"lib (>= 2)"},
		InstallDir:   "/apps/my software",
		ModuleFile:   "/apps/modules/tool",
	}
	args := cmd.Args()
	if !strings.HasPrefix(args[len(args)-2], "'") {
		t.Errorf("expected install dir with a space to be quoted, got %s", args[len(args)-2])
	}
	if dep := args[len(args)-3]; dep == "lib (>= 2)" || !strings.Contains(dep, "lib (>= 2)") {
		t.Errorf("expected dependency to be quoted, got %s", dep)
	}
}

func TestFpmCommandEmptyDependencies(t *testing.T) {
	cmd := FpmCommand{WorkDir: "/w", Name: "n", PackageType: "deb", Version: "1", Iteration: "1", InstallDir: "/i", ModuleFile: "/m"}
	got := cmd.String()
	if strings.Contains(got, "--depends") {
		t.Errorf("expected no --depends fragment, got: %s", got)
	}
	if strings.Contains(got, "  ") {
		t.Errorf("expected single spaces between tokens, got: %q", got)
	}
}

func TestPackageUnknownTool(t *testing.T) {
	mock := mockFpm(t, nil)
	cfg := testConfig(t)
	cfg.PackageTool = "checkinstall"

	_, err := newTestPackager(cfg).Package(zlibBuild())
	if err == nil {
		t.Fatal("Expected error for unknown packaging tool")
	}
	if !errors.Is(err, config.ErrConfiguration) || !strings.Contains(err.Error(), "checkinstall") {
		t.Errorf("Expected configuration error naming the tool, got: %v", err)
	}
	if len(mock.Calls) != 0 {
		t.Errorf("Expected no command to run, got %v", mock.Calls)
	}
}

func TestPackageUnknownNamingScheme(t *testing.T) {
	mock := mockFpm(t, nil)
	cfg := testConfig(t)
	cfg.PackageNamingScheme = "HierarchicalPNS"

	_, err := newTestPackager(cfg).Package(zlibBuild())
	if !errors.Is(err, config.ErrConfiguration) {
		t.Fatalf("Expected configuration error, got: %v", err)
	}
	if !strings.Contains(err.Error(), pkgnaming.EasyBuildPNSName) {
		t.Errorf("Expected error to list available schemes, got: %v", err)
	}
	if len(mock.Calls) != 0 {
		t.Errorf("Expected no command to run, got %v", mock.Calls)
	}
}

func TestPackageWorkDirFailure(t *testing.T) {
	mockFpm(t, nil)
	cfg := testConfig(t)
	cfg.TempDir = filepath.Join(cfg.TempDir, "does", "not", "exist")

	_, err := newTestPackager(cfg).Package(zlibBuild())
	if !errors.Is(err, ErrIO) {
		t.Fatalf("Expected ErrIO, got: %v", err)
	}
}

func TestCreateWorkDirRemovedWhenNotWritable(t *testing.T) {
	original := createScratchFile
	t.Cleanup(func() { createScratchFile = original })
	createScratchFile = func(string, string) (*os.File, error) {
		return nil, errors.New("read-only file system")
	}

	base := t.TempDir()
	_, err := createWorkDir(base)
	if !errors.Is(err, ErrIO) {
		t.Fatalf("Expected ErrIO, got: %v", err)
	}
	left, err := filepath.Glob(filepath.Join(base, WorkDirPrefix+"*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Errorf("Expected work directory to be removed, found %v", left)
	}
}

func TestPackageNoDependencies(t *testing.T) {
	mock := mockFpm(t, nil)
	cfg := testConfig(t)
	build := zlibBuild()
	build.Toolchain = ospackage.Toolchain{Name: ospackage.DummyToolchainName, Version: ospackage.DummyToolchainName}

	workDir, err := newTestPackager(cfg).Package(build)
	if err != nil {
		t.Fatalf("Package failed: %v", err)
	}

	if filepath.Dir(workDir) != cfg.TempDir || !strings.HasPrefix(filepath.Base(workDir), WorkDirPrefix) {
		t.Errorf("Expected work dir %s*/ under %s, got %s", WorkDirPrefix, cfg.TempDir, workDir)
	}
	if info, err := os.Stat(workDir); err != nil || !info.IsDir() {
		t.Errorf("Expected work dir to exist: %v", err)
	}
	if len(mock.Calls) != 1 {
		t.Fatalf("Expected exactly one command, got %v", mock.Calls)
	}
	if mock.Dirs[0] != workDir {
		t.Errorf("Expected command to run in %s, ran in %q", workDir, mock.Dirs[0])
	}
	cmd := mock.Calls[0]
	if strings.Contains(cmd, "--depends") {
		t.Errorf("Expected no --depends fragment, got: %s", cmd)
	}
	for _, want := range []string{"--workdir " + workDir, "--name zlib-1.2.8", "--provides zlib-1.2.8 ", "-t rpm", "-s dir", "--iteration 1"} {
		if !strings.Contains(cmd, want) {
			t.Errorf("Expected command to contain %q, got: %s", want, cmd)
		}
	}
}

func TestPackageDependencies(t *testing.T) {
	bzip2 := ospackage.Spec{Name: "bzip2", Version: "1.0.6", Toolchain: gcc}
	ncurses := ospackage.Spec{Name: "ncurses", Version: "5.9", Toolchain: gcc}
	libreadline := ospackage.Spec{Name: "libreadline", Version: "6.3", VersionSuffix: "-static", Toolchain: gcc}

	tests := []struct {
		name      string
		toolchain ospackage.Toolchain
		deps      []ospackage.Spec
		wantDeps  []string
	}{
		{
			name:      "toolchain only",
			toolchain: gcc,
			wantDeps:  []string{"GCC-4.9.2"},
		},
		{
			name:      "toolchain first then declared order",
			toolchain: gcc,
			deps:      []ospackage.Spec{ncurses, bzip2, libreadline},
			wantDeps:  []string{"GCC-4.9.2", "ncurses-5.9-GCC-4.9.2", "bzip2-1.0.6-GCC-4.9.2", "libreadline-6.3-GCC-4.9.2-static"},
		},
		{
			name:      "dummy toolchain excluded",
			toolchain: ospackage.Toolchain{Name: "dummy", Version: "dummy"},
			deps:      []ospackage.Spec{bzip2},
			wantDeps:  []string{"bzip2-1.0.6-GCC-4.9.2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := mockFpm(t, nil)
			build := zlibBuild(tt.deps...)
			build.Toolchain = tt.toolchain

			if _, err := newTestPackager(testConfig(t)).Package(build); err != nil {
				t.Fatalf("Package failed: %v", err)
			}
			if len(mock.Calls) != 1 {
				t.Fatalf("Expected exactly one command, got %v", mock.Calls)
			}

			args := strings.Fields(mock.Calls[0])
			var gotDeps []string
			for i, arg := range args {
				if arg == "--depends" && i+1 < len(args) {
					gotDeps = append(gotDeps, args[i+1])
				}
			}
			if diff := cmp.Diff(tt.wantDeps, gotDeps); diff != "" {
				t.Errorf("--depends mismatch (-want +got):\n%s", diff)
			}
			if n := strings.Count(mock.Calls[0], "--depends "); n != len(tt.wantDeps) {
				t.Errorf("Expected %d --depends fragments, got %d", len(tt.wantDeps), n)
			}
		})
	}
}

func TestPackageCommandFailure(t *testing.T) {
	mockFpm(t, fmt.Errorf("exit status 1"))

	_, err := newTestPackager(testConfig(t)).Package(zlibBuild())
	if err == nil {
		t.Fatal("Expected error when fpm fails")
	}
	if !strings.Contains(err.Error(), "packaging zlib-1.2.8-GCC-4.9.2 with fpm failed") {
		t.Errorf("Unexpected error: %v", err)
	}
}
