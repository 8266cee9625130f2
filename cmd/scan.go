package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/securiscan/securiscan-cli/internal/application"
	scanapp "github.com/securiscan/securiscan-cli/internal/application/scan"
	"github.com/securiscan/securiscan-cli/internal/checker"
	consts "github.com/securiscan/securiscan-cli/internal/shared/constants"
	sharedErrors "github.com/securiscan/securiscan-cli/internal/shared/errors"
)

const urlPrompt = "Enter the website URL to scan using " + consts.ToolName + ": "

var scanCmd = &cobra.Command{
	Use:   "scan [url]",
	Short: "Scan a website for outdated libraries, admin panels, missing headers and CSRF/traversal hints",
	Long: `Scan runs all probes concurrently against one URL and prints the findings.
When no URL is given it is read from standard input.

Reports are written to the results directory as <host_path>_scan.txt and
<host_path>_scan.json (plus <host_path>_scan.pdf with --pdf).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx := getAppContext(cmd)

		raw := ""
		if len(args) == 1 {
			raw = args[0]
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return runScan(ctx, appCtx, raw, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func runScan(ctx context.Context, appCtx *AppContext, raw string, in io.Reader, out io.Writer) error {
	cfg := appCtx.Config.Scan
	logger := appCtx.Logger

	fmt.Fprintln(out, colorInfo("--- Welcome to "+consts.ToolName+" ---"))

	if strings.TrimSpace(raw) == "" {
		var err error
		raw, err = promptForURL(in, out)
		if err != nil {
			return err
		}
	}

	fetchOpts := cfg.FetchOptions(logger)
	if fetchOpts.UserAgent == "" {
		fetchOpts.UserAgent = userAgent()
	}

	container, err := application.NewContainer(application.Config{
		ResultsDir: appCtx.ResultsDir,
		Fetch:      fetchOpts,
		Libraries:  checker.MergeVulnerableLibraries(checker.DefaultVulnerableLibraries(), cfg.VulnerableLibraries),
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	orchestrator := container.ScanOrchestrator
	var progress *progressPrinter
	if cfg.ProgressEnabled {
		progress = newProgressPrinter(len(orchestrator.Probes()), "scan", out)
		orchestrator = orchestrator.WithObserver(func(r scanapp.ProbeReport) {
			progress.Increment(r.Degraded, r.Duration.Seconds())
		})
		progress.Start()
	}

	start := time.Now()
	result, err := orchestrator.Scan(ctx, raw)
	if progress != nil {
		progress.Stop()
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	renderConsole(out, result)
	logSectionSummaries(logger, result)

	textPath, err := writeTextReport(appCtx.ResultsDir, result)
	if err != nil {
		return err
	}

	jsonPath, err := container.ResultRepo.Save(ctx, result)
	if err != nil {
		return fmt.Errorf("failed to save scan result: %w", err)
	}
	logger.Infow("Scan result saved", "text", textPath, "json", jsonPath)

	if cfg.PDFEnabled {
		pdfPath, err := writePDFReport(appCtx.ResultsDir, result)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "PDF report: %s\n", pdfPath)
	}

	if cfg.TelemetryEnabled {
		if err := recordTelemetry(appCtx, "scan", result, elapsed); err != nil {
			logger.Warnw("Failed to record telemetry", "error", err)
		}
	}

	fmt.Fprintln(out, colorInfo("Scan results saved to: "+textPath))
	return nil
}

func promptForURL(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, urlPrompt)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read URL: %w", err)
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return "", sharedErrors.ErrEmptyTarget
	}
	return line, nil
}

func init() {
	flags := scanCmd.Flags()
	flags.IntVar(&cliConfig.Scan.Retries, "retries", cliConfig.Scan.Retries, "HTTP attempts per request")
	flags.IntVar(&cliConfig.Scan.TimeoutSecs, "timeout", cliConfig.Scan.TimeoutSecs, "per-attempt timeout in seconds")
	flags.IntVar(&cliConfig.Scan.RetryDelaySecs, "retry-delay", cliConfig.Scan.RetryDelaySecs, "seconds to wait between attempts")
	flags.IntVar(&cliConfig.Scan.RateLimit, "rate-limit", cliConfig.Scan.RateLimit, "max requests per second (0 = unlimited)")
	flags.StringVar(&cliConfig.Scan.UserAgent, "user-agent", cliConfig.Scan.UserAgent, "User-Agent header sent with every request")
	flags.BoolVar(&cliConfig.Scan.ProgressEnabled, "progress", false, "show live probe progress")
	flags.BoolVar(&cliConfig.Scan.TelemetryEnabled, "telemetry", cliConfig.Defaults.TelemetryEnabled, "append a run record to telemetry.jsonl")
	flags.BoolVar(&cliConfig.Scan.PDFEnabled, "pdf", cliConfig.Defaults.PDFEnabled, "also write a PDF report")
}
