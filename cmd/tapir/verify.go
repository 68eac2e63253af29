package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jamesainslie/tapir/pkg/tapir/output"
	"github.com/jamesainslie/tapir/pkg/tapir/verify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errDriftDetected signals that verification found modified, missing, or
// added files. The report has already been printed when this is returned.
var errDriftDetected = errors.New("drift detected")

var verifyCmd = &cobra.Command{
	Use:   "verify <manifest>",
	Short: "Verify the filesystem against a checksum manifest",
	Long: `Verify re-hashes every file recorded in the manifest and reports drift:
unchanged, modified, and missing files. With --scan-root, the root is
re-enumerated and files on disk that are absent from the manifest are
reported as added; without it, added is always empty.

Paths are matched exactly as recorded; no normalization is applied.

Exit status is 0 when the filesystem matches the manifest, 1 when drift
was found, and 2 on structural failures such as a corrupt manifest.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().String("scan-root", "", "re-scan this root to detect added files")

	_ = viper.BindPFlag("verify.scan_root", verifyCmd.Flags().Lookup("scan-root"))

	rootCmd.AddCommand(verifyCmd)
}

// runVerify is the verify command handler.
func runVerify(cmd *cobra.Command, args []string) error {
	manifestPath := args[0]

	chunkSize, err := chunkSizeFromConfig()
	if err != nil {
		return err
	}

	outFormat := viper.GetString("output")
	formatter, err := output.Get(outFormat)
	if err != nil {
		return fmt.Errorf("unknown output format %q: available formats are %v", outFormat, output.Available())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scanRoot := viper.GetString("verify.scan_root")

	report, err := verify.RunFile(ctx, manifestPath, verify.Options{
		Workers:   viper.GetInt("workers"),
		ChunkSize: chunkSize,
		ScanRoot:  scanRoot,
	})
	if err != nil {
		return err
	}

	result := toOutputResult(manifestPath, scanRoot, report)

	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(buf.String())

	if !report.Clean() {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return errDriftDetected
	}
	return nil
}

// toOutputResult converts a verify.Report to the output package's shape.
func toOutputResult(manifestPath, scanRoot string, report *verify.Report) *output.Result {
	errs := make([]string, len(report.Errors))
	for i, pe := range report.Errors {
		errs[i] = pe.Error()
	}

	checked := len(report.Unchanged) + len(report.Modified) + len(report.Missing) + len(report.Errors)

	return &output.Result{
		Manifest: manifestPath,
		ScanRoot: scanRoot,
		Diff: output.Diff{
			Unchanged: report.Unchanged,
			Modified:  report.Modified,
			Missing:   report.Missing,
			Added:     report.Added,
			Errors:    errs,
		},
		Stats: output.Stats{
			RecordsChecked: checked,
			Duration:       report.Elapsed,
		},
		Clean: report.Clean(),
	}
}
