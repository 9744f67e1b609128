package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/hpc-buildtools/ebpkg/internal/config"
	"github.com/hpc-buildtools/ebpkg/internal/ospackage"
	"github.com/hpc-buildtools/ebpkg/internal/packager"
	"github.com/hpc-buildtools/ebpkg/internal/pkgnaming"
	"github.com/hpc-buildtools/ebpkg/internal/utils/logger"
)

var noProgress bool

// createPackageCommand creates the package subcommand
func createPackageCommand() *cobra.Command {
	packageCmd := &cobra.Command{
		Use:   "package [flags] DESCRIPTOR...",
		Short: "creates distribution packages from installed builds",
		Long: `Package reads one or more build descriptors (YAML files naming the
software, its toolchain, dependencies, install directory and module file)
and runs the packaging tool on each of them in turn. The package files
produced for every descriptor are listed on stdout.`,
		Args: cobra.MinimumNArgs(1),
		RunE: executePackage,
	}

	packageCmd.Flags().BoolVar(&noProgress, "no-progress", false,
		"Do not draw a progress bar")
	return packageCmd
}

// executePackage handles the package command execution logic
func executePackage(cmd *cobra.Command, args []string) error {
	log := logger.Logger()
	cfg := globalConfig
	helpers := config.NewConfigHelpers(cfg)

	if err := packager.CheckSupport(cfg); err != nil {
		return err
	}
	if _, err := helpers.CreateTempDir(); err != nil {
		return fmt.Errorf("%w: %v", packager.ErrIO, err)
	}

	resolver := pkgnaming.NewResolver(pkgnaming.DefaultRegistry(), helpers.PackageNamingScheme())
	pkgr := packager.New(cfg, resolver)

	logger.GlobalStringListReport.RunID = uuid.NewString()
	logger.GlobalStringListReport.Items = []string{}

	// Debug logs would interleave with the bar.
	var barOut io.Writer = cmd.ErrOrStderr()
	if noProgress || helpers.IsDebugMode() {
		barOut = io.Discard
	}
	bar := progressbar.NewOptions(len(args),
		progressbar.OptionSetWriter(barOut),
		progressbar.OptionSetDescription("packaging"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)

	out := cmd.OutOrStdout()
	for _, descriptor := range args {
		bar.Describe(fmt.Sprintf("packaging %s", filepath.Base(descriptor)))

		build, err := ospackage.LoadBuild(descriptor)
		if err != nil {
			return fmt.Errorf("loading build descriptor %s: %w", descriptor, err)
		}
		workDir, err := pkgr.Package(build)
		if err != nil {
			return err
		}

		pkgs, err := packager.ListPackages(workDir)
		if err != nil {
			return err
		}
		if len(pkgs) == 0 {
			log.Warnf("No package files found in %s", workDir)
		}
		for _, p := range pkgs {
			fmt.Fprintln(out, formatBuiltPackage(p))
			logger.AddReportItem(p.Path)
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	reportDir, err := helpers.CreateReportDir()
	if err != nil {
		return err
	}
	if reportDir == "" {
		return nil
	}
	logger.ReportPath = reportDir
	reportFile, err := logger.WriteListReportToFile()
	if err != nil {
		return fmt.Errorf("writing package report: %w", err)
	}
	log.Infof("Package report written to %s", reportFile)
	return nil
}

func formatBuiltPackage(p packager.BuiltPackage) string {
	if p.Name == "" {
		return p.Path
	}
	line := fmt.Sprintf("%s\t%s-%s-%s.%s", p.Path, p.Name, p.Version, p.Release, p.Arch)
	if len(p.Requires) > 0 {
		line += "\trequires: " + strings.Join(p.Requires, ", ")
	}
	return line
}
