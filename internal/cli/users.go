package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"teamassist/internal/adapter/directory"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Inspect the user directory",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users and their dashboards",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := loadDirectory()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "USERNAME\tNAME\tROLE\tTEAM\tDASHBOARD")
		for _, u := range dir.Users() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.Username, u.Name, u.Role, u.Team, u.Dashboard)
		}
		return w.Flush()
	},
}

var usersHashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Print the password_sha256 value for a users file",
	Long: `Read a password (prompted on a terminal, otherwise from stdin) and print its
sha256 digest for the password_sha256 field of a users file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pw, err := readPassword()
		if err != nil {
			return err
		}
		fmt.Println(directory.HashPassword(pw))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersHashCmd)
}
