package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/hpc-buildtools/ebpkg/internal/utils/slice"
)

const (
	PkgToolFPM = "fpm"
	PkgTypeRPM = "rpm"
	PkgTypeDEB = "deb"

	DefaultPackageNamingScheme = "EasyBuildPNS"

	// EnvPrefix prefixes environment overrides, e.g. EBPKG_PACKAGE_TYPE=deb.
	EnvPrefix = "EBPKG"
)

// Configuration keys, shared by the config file, environment and CLI flags.
const (
	KeyPackageTool         = "package-tool"
	KeyPackageType         = "package-type"
	KeyPackageNamingScheme = "package-naming-scheme"
	KeyTempDir             = "tmpdir"
	KeyReportDir           = "report-dir"
	KeyLogLevel            = "logging.level"
)

// SupportedPackageTypes lists the package types FPM is asked to produce.
var SupportedPackageTypes = []string{PkgTypeRPM, PkgTypeDEB}

// GlobalConfig holds the process-wide packaging settings.
type GlobalConfig struct {
	PackageTool         string        `mapstructure:"package-tool" yaml:"package-tool" json:"package-tool"`
	PackageType         string        `mapstructure:"package-type" yaml:"package-type" json:"package-type"`
	PackageNamingScheme string        `mapstructure:"package-naming-scheme" yaml:"package-naming-scheme" json:"package-naming-scheme"`
	TempDir             string        `mapstructure:"tmpdir" yaml:"tmpdir" json:"tmpdir"`
	ReportDir           string        `mapstructure:"report-dir" yaml:"report-dir" json:"report-dir"`
	Logging             LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level" json:"level"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() *GlobalConfig {
	return &GlobalConfig{
		PackageTool:         PkgToolFPM,
		PackageType:         PkgTypeRPM,
		PackageNamingScheme: DefaultPackageNamingScheme,
		Logging:             LoggingConfig{Level: "info"},
	}
}

// NewViper returns a viper instance with defaults and EBPKG_* environment
// overrides registered.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault(KeyPackageTool, def.PackageTool)
	v.SetDefault(KeyPackageType, def.PackageType)
	v.SetDefault(KeyPackageNamingScheme, def.PackageNamingScheme)
	v.SetDefault(KeyTempDir, def.TempDir)
	v.SetDefault(KeyReportDir, def.ReportDir)
	v.SetDefault(KeyLogLevel, def.Logging.Level)
	return v
}

// Load reads configFile (if set) into v and decodes the merged settings.
func Load(v *viper.Viper, configFile string) (*GlobalConfig, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: reading config file %s: %v", ErrConfiguration, configFile, err)
		}
	}

	cfg := &GlobalConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: decoding configuration: %v", ErrConfiguration, err)
	}
	cfg.PackageTool = strings.TrimSpace(cfg.PackageTool)
	cfg.PackageType = strings.ToLower(strings.TrimSpace(cfg.PackageType))
	cfg.PackageNamingScheme = strings.TrimSpace(cfg.PackageNamingScheme)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that can be checked without touching the host.
// Whether the packaging tool is supported or installed is decided by the packager.
func (c *GlobalConfig) Validate() error {
	if c.PackageTool == "" {
		return fmt.Errorf("%w: no packaging tool configured", ErrConfiguration)
	}
	if !slice.Contains(SupportedPackageTypes, c.PackageType) {
		return fmt.Errorf("%w: unsupported package type %q, expected one of %s",
			ErrConfiguration, c.PackageType, strings.Join(SupportedPackageTypes, ", "))
	}
	if c.PackageNamingScheme == "" {
		return fmt.Errorf("%w: no package naming scheme configured", ErrConfiguration)
	}
	return nil
}
