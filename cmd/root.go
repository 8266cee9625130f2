package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/securiscan/securiscan-cli/internal/logging"
	consts "github.com/securiscan/securiscan-cli/internal/shared/constants"
)

var cfgFile string

// AppContext carries per-invocation state from the root pre-run to subcommands
type AppContext struct {
	Logger     *zap.SugaredLogger
	ResultsDir string
	Config     *CLIConfig

	closeLogger func() error
}

type appContextKey struct{}

var globalAppContext *AppContext

var rootCmd = &cobra.Command{
	Use:   "securiscan",
	Short: "Lightweight website security scanner",
	Long: `SecuriScan runs a fixed set of passive probes against a single website:
outdated JavaScript libraries, exposed admin panels, missing security headers
and simple CSRF / directory traversal heuristics.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initConfig()
		applyConfigDefaults(cmd)

		resultsDir := cliConfig.ResultsDir
		if resultsDir == "" {
			resultsDir = "./" + consts.DefaultResultsDir
		}

		// create results dir if not exists
		if err := os.MkdirAll(resultsDir, consts.DefaultDirPerm); err != nil {
			return fmt.Errorf("failed to create results directory: %w", err)
		}

		// Make final resultsDir absolute (for clarity in logs)
		if abs, err := filepath.Abs(resultsDir); err == nil {
			resultsDir = abs
		}

		logCfg := cliConfig.Log.toLogging(resultsDir)
		logger, closeLogger, err := logging.New(logCfg)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		storeAppContext(cmd, &AppContext{
			Logger:      logger,
			ResultsDir:  resultsDir,
			Config:      cliConfig,
			closeLogger: closeLogger,
		})

		logger.Debugw("configuration loaded",
			"config_file", viper.ConfigFileUsed(),
			"results_dir", resultsDir,
			"log_file", logCfg.FilePath,
		)

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		appCtx := getAppContext(cmd)
		if appCtx == nil || appCtx.closeLogger == nil {
			return nil
		}
		if err := appCtx.closeLogger(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, colorError(err.Error()))
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".securiscan")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SECURISCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

func storeAppContext(cmd *cobra.Command, appCtx *AppContext) {
	globalAppContext = appCtx

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appContextKey{}, appCtx))
}

func getAppContext(cmd *cobra.Command) *AppContext {
	if cmd != nil && cmd.Context() != nil {
		if appCtx, ok := cmd.Context().Value(appContextKey{}).(*AppContext); ok {
			return appCtx
		}
	}
	return globalAppContext
}

func init() {
	// config file flag
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.securiscan.yaml)")
	rootCmd.PersistentFlags().StringVar(&cliConfig.ResultsDir, "results-dir", cliConfig.ResultsDir, "directory for scan reports and the log file")
	rootCmd.PersistentFlags().StringVar(&cliConfig.Log.Level, "log-level", cliConfig.Log.Level, "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&cliConfig.Log.Format, "log-format", cliConfig.Log.Format, "log encoding: json|console")

	// add subcommands
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}
