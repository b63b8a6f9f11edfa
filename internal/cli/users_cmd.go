package cli

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"userhub/pkg/api"
)

func newUsersCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "users", Short: "Create, edit and delete users"}
	cmd.AddCommand(
		usersListCmd(e),
		usersGetCmd(e),
		usersCreateCmd(e),
		usersUpdateCmd(e),
		usersDeleteCmd(e),
	)
	return cmd
}

var userHeader = []string{"ID", "EMAIL", "ACTIVE", "GROUPS", "CREATED", "UPDATED"}

func userRow(u api.User) []string {
	names := make([]string, len(u.Groups))
	for i, g := range u.Groups {
		names[i] = g.Name
	}
	updated := "-"
	if u.UpdatedAt != nil {
		updated = u.UpdatedAt.Format(time.RFC3339)
	}
	return []string{u.ID, u.Email, strconv.FormatBool(u.Active), strings.Join(names, ","), u.CreatedAt.Format(time.RFC3339), updated}
}

func usersListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List live users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			us, err := e.c.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, e, us, userHeader, func() [][]string {
				rows := make([][]string, len(us))
				for i, u := range us {
					rows[i] = userRow(u)
				}
				return rows
			})
		},
	}
}

func usersGetCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <user-id>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := e.c.GetUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(cmd, e, u, userHeader, func() [][]string { return [][]string{userRow(u)} })
		},
	}
}

func usersCreateCmd(e *env) *cobra.Command {
	var (
		email  string
		groups []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := e.c.CreateUser(cmd.Context(), api.CreateUserRequest{Email: email, GroupIDs: groups})
			if err != nil {
				return err
			}
			return render(cmd, e, u, userHeader, func() [][]string { return [][]string{userRow(u)} })
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringSliceVar(&groups, "group", nil, "Group id (repeatable)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func usersUpdateCmd(e *env) *cobra.Command {
	var (
		email       string
		groups      []string
		clearGroups bool
		active      bool
	)
	cmd := &cobra.Command{
		Use:   "update <user-id>",
		Short: "Edit a user; only the flags given are changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in api.UpdateUserRequest
			if cmd.Flags().Changed("email") {
				in.Email = &email
			}
			if cmd.Flags().Changed("active") {
				in.Active = &active
			}
			switch {
			case clearGroups:
				in.GroupIDs = []string{}
			case cmd.Flags().Changed("group"):
				in.GroupIDs = groups
			}
			u, err := e.c.UpdateUser(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			return render(cmd, e, u, userHeader, func() [][]string { return [][]string{userRow(u)} })
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "New email address")
	cmd.Flags().StringSliceVar(&groups, "group", nil, "Replace memberships with these group ids")
	cmd.Flags().BoolVar(&clearGroups, "clear-groups", false, "Remove every membership")
	cmd.Flags().BoolVar(&active, "active", true, "Set the active flag")
	cmd.MarkFlagsMutuallyExclusive("group", "clear-groups")
	return cmd
}

func usersDeleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Soft-delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.c.DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			out := api.Deleted{ID: args[0]}
			return render(cmd, e, out, []string{"DELETED"}, func() [][]string { return [][]string{{out.ID}} })
		},
	}
}

