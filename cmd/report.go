package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/securiscan/securiscan-cli/internal/checker"
	"github.com/securiscan/securiscan-cli/internal/domain/scan"
	"github.com/securiscan/securiscan-cli/internal/infrastructure/persistence/json"
	consts "github.com/securiscan/securiscan-cli/internal/shared/constants"
)

const resultsBanner = "--- " + consts.ToolName + " Scan Results ---"

// renderConsole prints a result with one colour per section
func renderConsole(w io.Writer, result *scan.Result) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, colorInfo(resultsBanner))

	for _, section := range scan.Sections {
		messages := result.Messages(section)
		if len(messages) == 0 {
			fmt.Fprintln(w, colorSuccess(section.CleanMessage()))
			continue
		}
		fmt.Fprintln(w, colorHeading(section.Title()+":"))
		paint := sectionColor(section)
		for _, msg := range messages {
			fmt.Fprintln(w, paint(msg))
		}
	}
}

// renderText is the plain-text form written to <stem>_scan.txt
func renderText(result *scan.Result) string {
	var b strings.Builder
	for i, section := range scan.Sections {
		messages := result.Messages(section)
		if len(messages) == 0 {
			b.WriteString(section.CleanMessage() + "\n")
			continue
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(section.Title() + ":\n")
		for _, msg := range messages {
			b.WriteString(msg + "\n")
		}
	}
	return b.String()
}

func writeTextReport(resultsDir string, result *scan.Result) (string, error) {
	path, err := resolveReportPath(resultsDir, result.Target(), "txt")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(renderText(result)), consts.DefaultFilePerm); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

func writePDFReport(resultsDir string, result *scan.Result) (string, error) {
	data, err := generatePDFReportBytes(result)
	if err != nil {
		return "", fmt.Errorf("failed to generate PDF report: %w", err)
	}
	path, err := resolveReportPath(resultsDir, result.Target(), "pdf")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, consts.DefaultFilePerm); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// logSectionSummaries writes one line per section that has findings
func logSectionSummaries(logger *zap.SugaredLogger, result *scan.Result) {
	for _, section := range scan.Sections {
		messages := result.Messages(section)
		if len(messages) == 0 {
			continue
		}
		logger.Infof("%s: %s", section.Title(), strings.Join(messages, ", "))
	}
}

func generatePDFReportBytes(result *scan.Result) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, resultsBanner, "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Metadata
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Target: %s", result.Target()), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Started: %s", result.StartedAt().Format("2006-01-02 15:04:05 MST")), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Duration: %s", result.Duration().Round(time.Millisecond)), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Findings: %d", result.TotalFindings()), "", 1, "", false, 0, "")
	pdf.Ln(5)

	for _, section := range scan.Sections {
		if pdf.GetY() > 250 {
			pdf.AddPage()
		}

		pdf.SetFont("Arial", "B", 12)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(0, 8, section.Title(), "", 1, "", true, 0, "")
		pdf.Ln(1)

		findings := result.Findings(section)
		if len(findings) == 0 {
			pdf.SetFont("Arial", "I", 9)
			pdf.SetTextColor(0, 128, 0)
			pdf.MultiCell(0, 5, section.CleanMessage(), "", "", false)
			pdf.SetTextColor(0, 0, 0)
			pdf.Ln(3)
			continue
		}

		pdf.SetFont("Arial", "", 9)
		for _, f := range findings {
			if pdf.GetY() > 270 {
				pdf.AddPage()
			}
			if f.IsInformational() {
				pdf.SetFont("Arial", "I", 9)
			}
			pdf.MultiCell(0, 5, "- "+f.Message, "", "", false)
			pdf.SetFont("Arial", "", 9)
		}
		pdf.Ln(3)
	}

	// Generate PDF bytes
	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return buf.Bytes(), nil
}

var reportCmd = &cobra.Command{
	Use:   "report <url>",
	Short: "Re-render the saved result for a previously scanned URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx := getAppContext(cmd)

		format, _ := cmd.Flags().GetString("format")
		return runReport(cmd.Context(), appCtx, args[0], format, cmd.OutOrStdout())
	},
}

func runReport(ctx context.Context, appCtx *AppContext, rawURL, format string, out io.Writer) error {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "text" && format != "json" && format != "pdf" {
		return fmt.Errorf("invalid format: %s (must be text, json, or pdf)", format)
	}

	target, err := checker.ParseTarget(rawURL)
	if err != nil {
		return err
	}

	repo, err := json.NewScanResultRepository(appCtx.ResultsDir)
	if err != nil {
		return err
	}

	result, err := repo.FindByTarget(ctx, target.URL)
	if err != nil {
		return fmt.Errorf("failed to load scan result: %w", err)
	}

	switch format {
	case "json":
		data, err := json.MarshalResult(result)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	case "pdf":
		path, err := writePDFReport(appCtx.ResultsDir, result)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Report generated: %s\n", path)
	default:
		renderConsole(out, result)
	}

	return nil
}

func init() {
	reportCmd.Flags().String("format", "text", "Output format: text|json|pdf")
}
