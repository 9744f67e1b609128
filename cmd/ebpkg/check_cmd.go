package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hpc-buildtools/ebpkg/internal/config"
	"github.com/hpc-buildtools/ebpkg/internal/packager"
	"github.com/hpc-buildtools/ebpkg/internal/pkgnaming"
)

// createCheckCommand creates the check subcommand
func createCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "checks that packages can be built with the current configuration",
		Long: `Check verifies that the configured packaging tool is installed, that
rpmbuild is available when FPM has to produce RPMs, and that the
configured naming scheme exists. Nothing is built.`,
		Args: cobra.NoArgs,
		RunE: executeCheck,
	}
}

func executeCheck(cmd *cobra.Command, args []string) error {
	cfg := globalConfig
	helpers := config.NewConfigHelpers(cfg)

	if err := packager.CheckSupport(cfg); err != nil {
		return err
	}
	active, err := pkgnaming.NewResolver(pkgnaming.DefaultRegistry(), helpers.PackageNamingScheme()).Active()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s can build %s packages named with %s\n",
		helpers.PackageTool(), helpers.PackageType(), active.ID())
	return nil
}
