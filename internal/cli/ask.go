package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question as a signed-in user",
	Long: `Sign in, retrieve context for the question and print the answer.

Examples:
  teamassist ask -u rishab.bhat "Who is on call this week?"
  TEAMASSIST_PASSWORD=optum123 teamassist ask -u michael.joyce "What are the sprint goals?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&loginUser, "user", "u", "", "username to sign in as")
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	fmt.Println(ask.Ask(ctx, user, strings.Join(args, " ")))
	return nil
}
