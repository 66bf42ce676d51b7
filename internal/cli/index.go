package cli

import (
	"fmt"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"teamassist/internal/usecase"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the corpus and print statistics",
	Long: `Load, chunk and embed every document in the documents directory and report
what was indexed. Nothing is written to disk except the optional embedding cache.

Examples:
  teamassist index
  teamassist index --docs /path/to/team/docs`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("Scanning %s...\n", a.corpus.Dir())
	a.corpus.SetProgress(newProgress("Embedding"))

	result, err := a.corpus.Load(ctx)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	s := result.Stats
	fmt.Printf("\nIndexing complete:\n")
	fmt.Printf("  Files loaded:   %d of %d\n", s.FilesLoaded, s.FilesSeen)
	fmt.Printf("  Files skipped:  %d\n", s.FilesSkipped)
	fmt.Printf("  Documents:      %d\n", s.Documents)
	fmt.Printf("  Chunks:         %d (avg %.0f chars)\n", s.Chunks, s.AvgChunkLen)
	fmt.Printf("  Model:          %s (%d dims)\n", a.embedder.ModelName(), s.Dimension)
	fmt.Printf("  Took:           %s\n", formatDuration(result.Duration))

	if len(result.Skipped) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, sk := range result.Skipped {
			fmt.Printf("  - %s: %s\n", sk.Path, sk.Reason)
		}
	}
	return nil
}

// newProgress returns a progress callback that draws a bar once the total
// is known.
func newProgress(description string) usecase.ProgressFunc {
	var (
		bar       *progressbar.ProgressBar
		mu        sync.Mutex
		startTime time.Time
	)
	return func(done, total int) {
		mu.Lock()
		defer mu.Unlock()

		if bar == nil {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription(fmt.Sprintf("[cyan]%s[reset]", description)),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}

		_ = bar.Set(done)

		if done > 0 && done < total {
			rate := float64(done) / time.Since(startTime).Seconds()
			if rate > 0 {
				eta := time.Duration(float64(total-done)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]%s[reset] ETA: %s", description, formatDuration(eta)))
			}
		}
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
