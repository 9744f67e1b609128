package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hpc-buildtools/ebpkg/internal/utils/logger"
	"github.com/hpc-buildtools/ebpkg/internal/utils/system"
)

var sysinfoFormat string // "text" | "json" | "yaml"

// createSysinfoCommand creates the sysinfo subcommand
func createSysinfoCommand() *cobra.Command {
	sysinfoCmd := &cobra.Command{
		Use:   "sysinfo",
		Short: "prints the detected host facts",
		Long: `Sysinfo probes the host for its core count, CPU vendor and model,
system type, platform triple, shared library extension and distribution
name and version. Probes that fail are reported as warnings and left
empty in the output.`,
		Args: cobra.NoArgs,
		RunE: executeSysinfo,
	}

	sysinfoCmd.Flags().StringVar(&sysinfoFormat, "format", "text",
		"Output format: text, json or yaml")
	return sysinfoCmd
}

func executeSysinfo(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(sysinfoFormat)
	switch format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid --format %q (expected text|json|yaml)", sysinfoFormat)
	}

	info, err := system.Collect()
	if err != nil {
		logger.Logger().Warnf("Some host facts could not be detected: %v", err)
	}
	return writeSysinfo(cmd, info, format)
}

func writeSysinfo(cmd *cobra.Command, info *system.Info, format string) error {
	out := cmd.OutOrStdout()

	switch format {
	case "json":
		b, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		_, _ = fmt.Fprintln(out, string(b))
		return nil
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(info); err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		return enc.Close()
	default:
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		rows := []struct {
			label string
			value any
		}{
			{"Core count", info.CoreCount},
			{"CPU vendor", info.CPUVendor},
			{"CPU model", info.CPUModel},
			{"System type", info.SystemType},
			{"Platform", info.PlatformName},
			{"Shared lib ext", info.SharedLibExt},
			{"System name", info.SystemName},
			{"System version", info.SystemVersion},
		}
		for _, r := range rows {
			fmt.Fprintf(tw, "%s:\t%v\n", r.label, r.value)
		}
		return tw.Flush()
	}
}
