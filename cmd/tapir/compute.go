package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jamesainslie/tapir/pkg/tapir/compute"
	"github.com/jamesainslie/tapir/pkg/tapir/logging"
	"github.com/jamesainslie/tapir/pkg/tapir/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var computeCmd = &cobra.Command{
	Use:   "compute [paths...]",
	Short: "Compute a checksum manifest for files or directory trees",
	Long: `Compute hashes every regular file under the given paths and emits a
manifest, one "<digest>  <path>" record per line in deterministic order.

Directories are recursed fully; files are hashed in parallel but the
manifest order never depends on completion order. A missing top-level
path fails the whole operation; a file that becomes unreadable mid-run
is reported but does not stop the rest of the batch.

The manifest is written to stdout, or to a file with --out.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompute,
}

func init() {
	computeCmd.Flags().String("out", "", "write the manifest to this file instead of stdout")
	computeCmd.Flags().StringSliceP("exclude", "e", nil, "exclude glob patterns (can be specified multiple times)")
	computeCmd.Flags().String("name", "", "only hash files with this exact name")
	computeCmd.Flags().String("glob", "", "only hash files whose name matches this glob")
	computeCmd.Flags().String("regex", "", "only hash files whose name matches this regexp")
	computeCmd.Flags().String("min-size", "", "only hash files of at least this size (e.g., 1K, 10M)")
	computeCmd.Flags().String("max-size", "", "only hash files of at most this size")
	computeCmd.Flags().String("changed-within", "", "only hash files modified within this duration (e.g., 72h)")

	_ = viper.BindPFlag("compute.out", computeCmd.Flags().Lookup("out"))
	_ = viper.BindPFlag("exclude", computeCmd.Flags().Lookup("exclude"))
	_ = viper.BindPFlag("compute.name", computeCmd.Flags().Lookup("name"))
	_ = viper.BindPFlag("compute.glob", computeCmd.Flags().Lookup("glob"))
	_ = viper.BindPFlag("compute.regex", computeCmd.Flags().Lookup("regex"))
	_ = viper.BindPFlag("compute.min_size", computeCmd.Flags().Lookup("min-size"))
	_ = viper.BindPFlag("compute.max_size", computeCmd.Flags().Lookup("max-size"))
	_ = viper.BindPFlag("compute.changed_within", computeCmd.Flags().Lookup("changed-within"))

	rootCmd.AddCommand(computeCmd)
}

// runCompute is the compute command handler.
func runCompute(_ *cobra.Command, args []string) error {
	logger := logging.Get("compute")

	predicate, err := buildPredicate()
	if err != nil {
		return err
	}

	chunkSize, err := chunkSizeFromConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := compute.Options{
		Workers:   viper.GetInt("workers"),
		ChunkSize: chunkSize,
		Predicate: predicate,
	}
	if getVerbose() {
		opts.OnProgress = func(p compute.Progress) {
			logger.Debug("hashing",
				"files", p.FilesHashed,
				"bytes", types.FormatSize(p.BytesHashed),
				"failed", p.FilesFailed)
		}
	}

	res, err := compute.Run(ctx, args, opts)

	var batchErr *compute.BatchError
	if err != nil && !errors.As(err, &batchErr) {
		if errors.Is(ctx.Err(), context.Canceled) {
			printInfo("Compute cancelled")
			return err
		}
		return err
	}

	for _, we := range res.WalkErrors {
		printError("%v", we)
	}

	// Per-file failures are reported alongside whatever succeeded.
	if batchErr != nil {
		for _, pe := range batchErr.Errors {
			printError("%v", pe)
		}
	}

	outPath := viper.GetString("compute.out")
	if outPath == "" {
		if _, werr := os.Stdout.WriteString(res.Manifest.EncodeString()); werr != nil {
			return fmt.Errorf("writing manifest: %w", werr)
		}
	} else {
		if werr := res.Manifest.WriteFile(outPath); werr != nil {
			return werr
		}
		// Echo the records to stdout as well, so piping still works when
		// a file sink is in use.
		if !getQuiet() {
			if _, werr := os.Stdout.WriteString(res.Manifest.EncodeString()); werr != nil {
				return fmt.Errorf("writing manifest: %w", werr)
			}
		}
		printInfo("written: %s (%d files, %s)", outPath, res.FilesHashed, types.FormatSize(res.BytesHashed))
	}

	if batchErr != nil {
		return fmt.Errorf("compute completed with %d per-file issue(s)", len(batchErr.Errors))
	}
	return nil
}

// chunkSizeFromConfig parses the configured hash buffer size.
func chunkSizeFromConfig() (int, error) {
	chunkStr := viper.GetString("chunk_size")
	if chunkStr == "" {
		return 0, nil
	}
	n, err := types.ParseSize(chunkStr)
	if err != nil {
		return 0, fmt.Errorf("invalid chunk-size %q: %w", chunkStr, err)
	}
	return int(n), nil
}
