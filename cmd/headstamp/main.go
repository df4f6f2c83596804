package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/DanielWuxiaoxiao/headstamp/internal/config"
	"github.com/DanielWuxiaoxiao/headstamp/internal/report"
	"github.com/DanielWuxiaoxiao/headstamp/internal/updater"
)

var (
	version = "0.0.1"
	logger  *zap.Logger
	verbose bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd creates the root command, which performs the header update
func newRootCmd() *cobra.Command {
	var (
		cfgFile    string
		mode       string
		root       string
		author     string
		email      string
		extensions []string
		skipDirs   []string
		maxSize    string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "headstamp [file ...]",
		Short: "Keep source file headers synchronized with git history",
		Long: `headstamp rewrites the leading comment header of source files, filling
@Date from the first commit that added each file and @LastEditTime from the
most recent one. Untracked files fall back to filesystem timestamps.

Without file arguments the whole root is scanned for target extensions.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initLogger(); err != nil {
				return err
			}
			defer logger.Sync()

			cfg, err := config.LoadConfig(cfgFile)
			if err != nil {
				logger.Error("Failed to load config", zap.Error(err))
				return err
			}

			// Override config with CLI flags
			if mode != "" {
				cfg.Mode = mode
			}
			if root != "" {
				cfg.Root = root
			}
			if author != "" {
				cfg.Author = author
			}
			if email != "" {
				cfg.Email = email
			}
			if len(extensions) > 0 {
				cfg.Extensions = extensions
			}
			if len(skipDirs) > 0 {
				cfg.SkipDirs = skipDirs
			}
			if maxSize != "" {
				cfg.MaxSize = maxSize
			}
			if dryRun {
				cfg.DryRun = true
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			printer := report.NewPrinter(os.Stdout, verbose)
			u := updater.NewUpdater(cfg, logger, printer)

			summary, err := u.Run(cmd.Context(), args)
			if err != nil {
				logger.Error("Update run failed", zap.Error(err))
				return err
			}

			// Per-file failures were already printed as warnings; the batch
			// itself still exits 0.
			printer.Summary(summary)
			return nil
		},
	}

	// Global verbose flag
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	// Flags
	cmd.Flags().StringVar(&cfgFile, "config", "", "Config file (default: .headstamp.yaml in working dir or home)")
	cmd.Flags().StringVar(&mode, "mode", "", "Timestamp mode: git (history times) or commit (stamp LastEditTime=now)")
	cmd.Flags().StringVar(&root, "root", "", "Scan root and git working directory (default: .)")
	cmd.Flags().StringVar(&author, "author", "", "Value for the @Author and @LastEditors fields")
	cmd.Flags().StringVar(&email, "email", "", "Value for the @Email field")
	cmd.Flags().StringSliceVar(&extensions, "extensions", nil, "File extensions to update (comma-separated)")
	cmd.Flags().StringSliceVar(&skipDirs, "skip-dirs", nil, "Directory names to exclude (comma-separated)")
	cmd.Flags().StringVar(&maxSize, "max-size", "", "Maximum file size to touch (e.g. 650K; default: unlimited)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report would-be changes without writing")

	cmd.AddCommand(newCheckCmd())

	return cmd
}

// newCheckCmd creates the check command for CI use
func newCheckCmd() *cobra.Command {
	var (
		cfgFile    string
		root       string
		author     string
		email      string
		extensions []string
		skipDirs   []string
		maxSize    string
	)

	cmd := &cobra.Command{
		Use:   "check [file ...]",
		Short: "Verify headers are current without rewriting anything",
		Long: `check runs the same pipeline as an update in git mode but writes nothing:
it lists every file whose header is missing or stale and exits non-zero when
any exist.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initLogger(); err != nil {
				return err
			}
			defer logger.Sync()

			cfg, err := config.LoadConfig(cfgFile)
			if err != nil {
				logger.Error("Failed to load config", zap.Error(err))
				return err
			}

			if root != "" {
				cfg.Root = root
			}
			if author != "" {
				cfg.Author = author
			}
			if email != "" {
				cfg.Email = email
			}
			if len(extensions) > 0 {
				cfg.Extensions = extensions
			}
			if len(skipDirs) > 0 {
				cfg.SkipDirs = skipDirs
			}
			if maxSize != "" {
				cfg.MaxSize = maxSize
			}

			// A check always compares against history and never writes.
			cfg.Mode = config.ModeGit
			cfg.DryRun = true

			if err := cfg.Validate(); err != nil {
				return err
			}

			printer := report.NewPrinter(os.Stdout, verbose)
			u := updater.NewUpdater(cfg, logger, printer)

			summary, err := u.Run(cmd.Context(), args)
			if err != nil {
				logger.Error("Check run failed", zap.Error(err))
				return err
			}

			for _, path := range summary.Changed {
				printer.StaleFile(path)
			}
			if n := summary.ChangedCount(); n > 0 {
				return fmt.Errorf("%d file(s) have missing or stale headers", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "Config file (default: .headstamp.yaml in working dir or home)")
	cmd.Flags().StringVar(&root, "root", "", "Scan root and git working directory (default: .)")
	cmd.Flags().StringVar(&author, "author", "", "Value for the @Author and @LastEditors fields")
	cmd.Flags().StringVar(&email, "email", "", "Value for the @Email field")
	cmd.Flags().StringSliceVar(&extensions, "extensions", nil, "File extensions to check (comma-separated)")
	cmd.Flags().StringSliceVar(&skipDirs, "skip-dirs", nil, "Directory names to exclude (comma-separated)")
	cmd.Flags().StringVar(&maxSize, "max-size", "", "Maximum file size to check (e.g. 650K; default: unlimited)")

	return cmd
}

// initLogger initializes the process logger based on the verbose flag
func initLogger() error {
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		// Silent logger - only errors
		cfg := zap.Config{
			Level:            zap.NewAtomicLevelAt(zapcore.ErrorLevel),
			Encoding:         "json",
			OutputPaths:      []string{"stderr"},
			ErrorOutputPaths: []string{"stderr"},
			EncoderConfig:    zap.NewProductionEncoderConfig(),
		}
		logger, err = cfg.Build()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return err
	}
	return nil
}
