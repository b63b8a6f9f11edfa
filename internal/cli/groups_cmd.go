package cli

import (
	"github.com/spf13/cobra"

	"userhub/pkg/api"
)

func newGroupsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "groups", Short: "Inspect groups and manage their permissions"}
	cmd.AddCommand(
		groupsListCmd(e),
		groupsGetCmd(e),
		groupsPermissionsCmd(e),
		groupsAvailableCmd(e),
		groupsGrantCmd(e),
		groupsRevokeCmd(e),
	)
	return cmd
}

func permissionRows(ps []api.Permission) [][]string {
	rows := make([][]string, len(ps))
	for i, p := range ps {
		rows[i] = []string{p.ID, p.Name}
	}
	return rows
}

func renderDetail(cmd *cobra.Command, e *env, d api.GroupDetail) error {
	return render(cmd, e, d, []string{"KIND", "ID", "NAME"}, func() [][]string {
		rows := [][]string{{"group", d.ID, d.Name}}
		for _, p := range d.Permissions {
			rows = append(rows, []string{"permission", p.ID, p.Name})
		}
		for _, u := range d.Users {
			rows = append(rows, []string{"user", u.ID, u.Email})
		}
		return rows
	})
}

func groupsListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List live groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gs, err := e.c.ListGroups(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, e, gs, []string{"ID", "NAME"}, func() [][]string {
				rows := make([][]string, len(gs))
				for i, g := range gs {
					rows[i] = []string{g.ID, g.Name}
				}
				return rows
			})
		},
	}
}

func groupsGetCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <group-id>",
		Short: "Show a group with its permissions and members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := e.c.GetGroup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderDetail(cmd, e, d)
		},
	}
}

func groupsPermissionsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "permissions",
		Short: "List every live permission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ps, err := e.c.ListPermissions(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, e, ps, []string{"ID", "NAME"}, func() [][]string { return permissionRows(ps) })
		},
	}
}

func groupsAvailableCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "available <group-id>",
		Short: "List permissions the group does not have yet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := e.c.AvailablePermissions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(cmd, e, ps, []string{"ID", "NAME"}, func() [][]string { return permissionRows(ps) })
		},
	}
}

func groupsGrantCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "grant <group-id> <permission-id>",
		Short: "Assign a permission to a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := e.c.AddPermission(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return renderDetail(cmd, e, d)
		},
	}
}

func groupsRevokeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <group-id> <permission-id>",
		Short: "Remove a permission from a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := e.c.RemovePermission(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return renderDetail(cmd, e, d)
		},
	}
}

