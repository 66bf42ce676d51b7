package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"teamassist/internal/adapter/fs"
	"teamassist/pkg/logger"
)

var chatWatch bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat with the team assistant",
	Long: `Sign in and chat. With --watch the documents directory is watched and the
corpus is rebuilt in the background whenever a file changes.

Examples:
  teamassist chat -u rishab.bhat
  teamassist chat -u michael.joyce --watch`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVarP(&loginUser, "user", "u", "", "username to sign in as")
	chatCmd.Flags().BoolVar(&chatWatch, "watch", false, "rebuild the corpus when documents change")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	user, err := login()
	if err != nil {
		return err
	}

	ask, a, err := newAsk(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	dashboards, err := loadDashboards()
	if err != nil {
		return err
	}

	// Build up front so the first question does not stall the UI.
	if a != nil {
		a.corpus.SetProgress(newProgress("Embedding"))
		if _, err := a.corpus.Load(ctx); err != nil {
			return fmt.Errorf("failed to build corpus: %w", err)
		}
		a.corpus.SetProgress(nil)
	}

	// The UI owns the terminal; keep log lines out of it.
	logger.Init(logger.TestConfig())
	defer initLogger()

	model := newChatModel(ctx, ask, dashboards, user, GetConfig().Generator.AssistantName, ask.DemoMode())
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if chatWatch && a != nil {
		w, err := fs.NewWatcher(a.corpus.Dir(), fs.DefaultDebounce, func(ctx context.Context) {
			r, err := a.corpus.Refresh(ctx)
			if err != nil {
				p.Send(corpusMsg{err: err})
				return
			}
			p.Send(corpusMsg{chunks: r.Stats.Chunks})
		})
		if err != nil {
			return err
		}
		defer w.Close()
		go w.Run(ctx)
	}

	_, err = p.Run()
	return err
}
