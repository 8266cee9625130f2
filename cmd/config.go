package cmd

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/securiscan/securiscan-cli/internal/fetcher"
	"github.com/securiscan/securiscan-cli/internal/logging"
	consts "github.com/securiscan/securiscan-cli/internal/shared/constants"
)

const (
	defaultTimeoutSeconds    = 5
	defaultRetryDelaySeconds = 2
	defaultLogMaxSizeMB      = 10
	defaultLogMaxBackups     = 3
	defaultLogMaxAgeDays     = 28
)

// CLIConfig captures runtime configuration shared across commands.
type CLIConfig struct {
	ResultsDir string
	Defaults   DefaultValues
	Scan       ScanRuntimeConfig
	Log        LogConfig
}

// DefaultValues represent operator-level defaults, typically derived from env/config.
type DefaultValues struct {
	TelemetryEnabled bool
	PDFEnabled       bool
}

// ScanRuntimeConfig consolidates flag-driven settings for the scan command.
type ScanRuntimeConfig struct {
	Retries             int
	TimeoutSecs         int
	RetryDelaySecs      int
	RateLimit           int
	UserAgent           string
	TelemetryEnabled    bool
	ProgressEnabled     bool
	PDFEnabled          bool
	VulnerableLibraries map[string][]string
}

// LogConfig mirrors the log.* config keys.
type LogConfig struct {
	Level      string
	Format     string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type defaultOverrides struct {
	ResultsDir          string
	TelemetryEnabled    *bool
	PDFEnabled          *bool
	Retries             *int
	TimeoutSecs         *int
	RetryDelaySecs      *int
	RateLimit           *int
	UserAgent           string
	VulnerableLibraries map[string][]string
	Log                 logOverrides
}

type logOverrides struct {
	Level      string
	Format     string
	MaxSizeMB  *int
	MaxBackups *int
	MaxAgeDays *int
	Compress   *bool
}

var cliConfig = newCLIConfig()

func newCLIConfig() *CLIConfig {
	return &CLIConfig{
		ResultsDir: "./" + consts.DefaultResultsDir,
		Defaults: DefaultValues{
			TelemetryEnabled: false,
			PDFEnabled:       false,
		},
		Scan: ScanRuntimeConfig{
			Retries:        consts.DefaultRetries,
			TimeoutSecs:    defaultTimeoutSeconds,
			RetryDelaySecs: defaultRetryDelaySeconds,
			RateLimit:      0,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}

// FetchOptions converts the scan settings into fetcher options
func (c ScanRuntimeConfig) FetchOptions(logger *zap.SugaredLogger) fetcher.Options {
	return fetcher.Options{
		Retries:    c.Retries,
		Timeout:    time.Duration(c.TimeoutSecs) * time.Second,
		RetryDelay: time.Duration(c.RetryDelaySecs) * time.Second,
		RateLimit:  c.RateLimit,
		UserAgent:  c.UserAgent,
		Logger:     logger,
	}
}

func (c LogConfig) toLogging(resultsDir string) logging.Config {
	return logging.Config{
		Level:      c.Level,
		Format:     c.Format,
		FilePath:   filepath.Join(resultsDir, consts.LogFileName),
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

func loadDefaultOverrides() defaultOverrides {
	overrides := defaultOverrides{}

	if viper.IsSet("results_dir") {
		overrides.ResultsDir = viper.GetString("results_dir")
	}

	if viper.IsSet("defaults.telemetry") {
		val := viper.GetBool("defaults.telemetry")
		overrides.TelemetryEnabled = &val
	}

	if viper.IsSet("defaults.pdf") {
		val := viper.GetBool("defaults.pdf")
		overrides.PDFEnabled = &val
	}

	overrides.Retries = optionalInt("scan.retries")
	overrides.TimeoutSecs = optionalInt("scan.timeout_secs")
	overrides.RetryDelaySecs = optionalInt("scan.retry_delay_secs")
	overrides.RateLimit = optionalInt("scan.rate_limit")

	if viper.IsSet("scan.user_agent") {
		overrides.UserAgent = viper.GetString("scan.user_agent")
	}

	if viper.IsSet("scan.vulnerable_libraries") {
		overrides.VulnerableLibraries = viper.GetStringMapStringSlice("scan.vulnerable_libraries")
	}

	if viper.IsSet("log.level") {
		overrides.Log.Level = viper.GetString("log.level")
	}
	if viper.IsSet("log.format") {
		overrides.Log.Format = viper.GetString("log.format")
	}
	overrides.Log.MaxSizeMB = optionalInt("log.max_size_mb")
	overrides.Log.MaxBackups = optionalInt("log.max_backups")
	overrides.Log.MaxAgeDays = optionalInt("log.max_age_days")
	if viper.IsSet("log.compress") {
		val := viper.GetBool("log.compress")
		overrides.Log.Compress = &val
	}

	return overrides
}

func optionalInt(key string) *int {
	if !viper.IsSet(key) {
		return nil
	}
	val := viper.GetInt(key)
	return &val
}

// applyConfigDefaults merges config file defaults into the runtime config when the user
// did not explicitly override the corresponding flag.
func applyConfigDefaults(cmd *cobra.Command) {
	overrides := loadDefaultOverrides()
	rootFlags := cmd.Root().PersistentFlags()
	scanFlags := scanCmd.Flags()

	if overrides.ResultsDir != "" {
		applyStringDefault(rootFlags, "results-dir", overrides.ResultsDir, func(v string) {
			cliConfig.ResultsDir = v
		})
	}

	if overrides.Log.Level != "" {
		applyStringDefault(rootFlags, "log-level", overrides.Log.Level, func(v string) {
			cliConfig.Log.Level = v
		})
	}

	if overrides.Log.Format != "" {
		applyStringDefault(rootFlags, "log-format", overrides.Log.Format, func(v string) {
			cliConfig.Log.Format = v
		})
	}

	if overrides.Log.MaxSizeMB != nil {
		cliConfig.Log.MaxSizeMB = *overrides.Log.MaxSizeMB
	}
	if overrides.Log.MaxBackups != nil {
		cliConfig.Log.MaxBackups = *overrides.Log.MaxBackups
	}
	if overrides.Log.MaxAgeDays != nil {
		cliConfig.Log.MaxAgeDays = *overrides.Log.MaxAgeDays
	}
	if overrides.Log.Compress != nil {
		cliConfig.Log.Compress = *overrides.Log.Compress
	}

	if overrides.TelemetryEnabled != nil {
		applyBoolDefault(scanFlags, "telemetry", *overrides.TelemetryEnabled, func(v bool) {
			cliConfig.Defaults.TelemetryEnabled = v
			cliConfig.Scan.TelemetryEnabled = v
		})
	}

	if overrides.PDFEnabled != nil {
		applyBoolDefault(scanFlags, "pdf", *overrides.PDFEnabled, func(v bool) {
			cliConfig.Defaults.PDFEnabled = v
			cliConfig.Scan.PDFEnabled = v
		})
	}

	if overrides.Retries != nil {
		applyIntDefault(scanFlags, "retries", *overrides.Retries, func(v int) {
			cliConfig.Scan.Retries = v
		})
	}

	if overrides.TimeoutSecs != nil {
		applyIntDefault(scanFlags, "timeout", *overrides.TimeoutSecs, func(v int) {
			cliConfig.Scan.TimeoutSecs = v
		})
	}

	if overrides.RetryDelaySecs != nil {
		applyIntDefault(scanFlags, "retry-delay", *overrides.RetryDelaySecs, func(v int) {
			cliConfig.Scan.RetryDelaySecs = v
		})
	}

	if overrides.RateLimit != nil {
		applyIntDefault(scanFlags, "rate-limit", *overrides.RateLimit, func(v int) {
			cliConfig.Scan.RateLimit = v
		})
	}

	if overrides.UserAgent != "" {
		applyStringDefault(scanFlags, "user-agent", overrides.UserAgent, func(v string) {
			cliConfig.Scan.UserAgent = v
		})
	}

	if len(overrides.VulnerableLibraries) > 0 {
		cliConfig.Scan.VulnerableLibraries = overrides.VulnerableLibraries
	}
}

func applyIntDefault(flags *pflag.FlagSet, name string, value int, setter func(int)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyBoolDefault(flags *pflag.FlagSet, name string, value bool, setter func(bool)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyStringDefault(flags *pflag.FlagSet, name, value string, setter func(string)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}
