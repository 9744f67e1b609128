package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hpc-buildtools/ebpkg/internal/config"
	"github.com/hpc-buildtools/ebpkg/internal/utils/logger"
)

// Persistent command flags
var (
	configFile string
	logLevel   string
	verbose    bool
)

// globalConfig is loaded by the logging hook before any subcommand runs.
var globalConfig *config.GlobalConfig

func main() {
	logger.Init(nil)

	if err := createRootCommand().Execute(); err != nil {
		logger.Logger().Errorf("%v", err)
		os.Exit(1)
	}
}

// createRootCommand builds the command tree and binds the configuration flags to viper
func createRootCommand() *cobra.Command {
	v := config.NewViper()
	def := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "ebpkg",
		Short: "packages installed scientific software and reports host facts",
		Long: `ebpkg turns completed software installations into RPM or DEB
packages by driving FPM, and reports the host facts (CPU, OS, platform)
that build tooling keys installations on.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to a YAML configuration file")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.String(config.KeyPackageTool, def.PackageTool, "Packaging tool to use")
	flags.String(config.KeyPackageType, def.PackageType, "Package type to produce: rpm or deb")
	flags.String(config.KeyPackageNamingScheme, def.PackageNamingScheme, "Package naming scheme")
	flags.String(config.KeyTempDir, def.TempDir, "Directory package work directories are created under")
	flags.String(config.KeyReportDir, def.ReportDir, "Directory to write the package report to (disabled when empty)")

	bindConfigFlags(v, flags)

	rootCmd.AddCommand(createPackageCommand())
	rootCmd.AddCommand(createCheckCommand())
	rootCmd.AddCommand(createSysinfoCommand())
	rootCmd.AddCommand(createNamingSchemesCommand())

	attachLoggingHooks(rootCmd, v)
	return rootCmd
}

// bindConfigFlags binds every flag named after a configuration key
func bindConfigFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		switch f.Name {
		case config.KeyPackageTool, config.KeyPackageType, config.KeyPackageNamingScheme,
			config.KeyTempDir, config.KeyReportDir:
			// BindPFlag only fails for a nil flag.
			_ = v.BindPFlag(f.Name, f)
		}
	})
}

// resolveRequestedLogLevel returns the level asked for on the command line,
// or "" when the configured level should be used
func resolveRequestedLogLevel(cmd *cobra.Command) string {
	if logLevel != "" {
		return logLevel
	}
	if cmd == nil {
		return ""
	}
	if f := cmd.Flags().Lookup("verbose"); f != nil && f.Changed && f.Value.String() == "true" {
		return "debug"
	}
	return ""
}

// attachLoggingHooks makes every subcommand load the configuration and set the
// log level before it runs
func attachLoggingHooks(cmd *cobra.Command, v *viper.Viper) {
	for _, sub := range cmd.Commands() {
		prev := sub.PersistentPreRunE
		sub.PersistentPreRunE = func(c *cobra.Command, args []string) error {
			if err := initGlobalConfig(c, v); err != nil {
				return err
			}
			if prev != nil {
				return prev(c, args)
			}
			return nil
		}
		attachLoggingHooks(sub, v)
	}
}

func initGlobalConfig(cmd *cobra.Command, v *viper.Viper) error {
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return err
	}
	if lvl := resolveRequestedLogLevel(cmd); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if err := logger.SetLogLevel(config.NewConfigHelpers(cfg).LogLevel()); err != nil {
		return fmt.Errorf("%w: %v", config.ErrConfiguration, err)
	}
	logger.Logger().Debugf("Using configuration: %+v", *cfg)
	globalConfig = cfg
	return nil
}
