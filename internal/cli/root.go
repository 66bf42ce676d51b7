package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"teamassist/config"
	"teamassist/pkg/logger"
)

var (
	cfgFile  string
	cfg      *config.Config
	rootDir  string
	docsDir  string
	logLevel string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "teamassist",
	Short: "Team assistant - answer team questions from your own documents",
	Long: `teamassist loads the documents in a directory, splits them into overlapping
chunks, embeds them and answers questions with the most relevant chunks as context.

Without an API key for the generator it runs in demo mode with canned answers.

Example usage:
  teamassist index --docs ./docs                # Build the corpus and print stats
  teamassist query -q "who is on call"          # Show the best matching chunks
  teamassist ask -u rishab.bhat "sprint goals"  # Answer one question
  teamassist chat -u rishab.bhat --watch        # Interactive chat`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if err := loadDotEnv(rootDir); err != nil {
			return err
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		initLogger()
		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./teamassist.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&docsDir, "docs", "", "documents directory (default from config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error, disabled")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadDotEnv reads .env from the root directory when present. Variables
// already set in the environment win.
func loadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func initLogger() {
	lc := logger.DefaultConfig()
	lc.Level = logger.ParseLevel(cfg.Logging.Level)
	lc.JSON = cfg.Logging.JSON
	if logLevel != "" {
		lc.Level = logger.ParseLevel(logLevel)
	}
	if verbose {
		lc.Level = logger.DebugLevel
	}
	logger.Init(lc)
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}

// GetDocsDir returns the documents directory, resolved against the root.
func GetDocsDir() string {
	dir := cfg.Loader.Dir
	if docsDir != "" {
		dir = docsDir
	}
	return config.ResolvePath(rootDir, dir)
}
