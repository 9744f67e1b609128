package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hpc-buildtools/ebpkg/internal/config"
	"github.com/hpc-buildtools/ebpkg/internal/pkgnaming"
)

func createNamingSchemesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "naming-schemes",
		Short: "lists the available package naming schemes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			active := config.NewConfigHelpers(globalConfig).PackageNamingScheme()
			for _, name := range pkgnaming.DefaultRegistry().Names() {
				marker := " "
				if name == active {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, name)
			}
			return nil
		},
	}
}
