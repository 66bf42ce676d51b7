package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"teamassist/internal/adapter/dashboard"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the signed-in user's role dashboard",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().StringVarP(&loginUser, "user", "u", "", "username to sign in as")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	user, err := login()
	if err != nil {
		return err
	}

	provider, err := loadDashboards()
	if err != nil {
		return err
	}
	d, err := provider.Dashboard(user)
	if err != nil {
		return err
	}

	fmt.Print(dashboard.Render(d, terminalWidth()))
	return nil
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return min(w, 100)
	}
	return 80
}
