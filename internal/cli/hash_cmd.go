package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"userhub/pkg/utils"
)

// newHashPasswordCmd prints a bcrypt hash for app.admin.passwordHash.
func newHashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password for the admin config",
		Args:  cobra.ExactArgs(1),
		// 不需要连服务端
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := utils.HashPassword(args[0], cost)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), h)
			return err
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 0, "bcrypt cost (0 = library default)")
	return cmd
}
