package cli

import (
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"userhub/pkg/api"
)

func newStatsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show user statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := e.c.Statistics(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, e, st, []string{"METRIC", "VALUE"}, func() [][]string { return statRows(st) })
		},
	}
	cmd.AddCommand(statsCountCmd(e), statsActiveCmd(e), statsPerGroupCmd(e), statsGroupCmd(e))
	return cmd
}

func statRows(st api.Statistics) [][]string {
	rows := [][]string{
		{"total", strconv.FormatInt(st.TotalUsers, 10)},
		{"active", strconv.FormatInt(st.ActiveUsers, 10)},
		{"inactive", strconv.FormatInt(st.InactiveUsers, 10)},
		{"deleted", strconv.FormatInt(st.DeletedUsers, 10)},
		{"total_including_deleted", strconv.FormatInt(st.TotalIncludingDeleted, 10)},
	}
	return append(rows, perGroupRows(st.UsersPerGroup, "group:")...)
}

func perGroupRows(m map[string]int64, prefix string) [][]string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	rows := make([][]string, len(names))
	for i, n := range names {
		rows[i] = []string{prefix + n, strconv.FormatInt(m[n], 10)}
	}
	return rows
}

func countCmd(e *env, use, short string, args cobra.PositionalArgs, fetch func(cmd *cobra.Command, args []string) (int64, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, a []string) error {
			n, err := fetch(cmd, a)
			if err != nil {
				return err
			}
			out := api.Count{Count: n}
			return render(cmd, e, out, []string{"COUNT"}, func() [][]string {
				return [][]string{{strconv.FormatInt(n, 10)}}
			})
		},
	}
}

func statsCountCmd(e *env) *cobra.Command {
	return countCmd(e, "count", "Number of live users", cobra.NoArgs, func(cmd *cobra.Command, _ []string) (int64, error) {
		return e.c.TotalUsers(cmd.Context())
	})
}

func statsActiveCmd(e *env) *cobra.Command {
	return countCmd(e, "active", "Number of live active users", cobra.NoArgs, func(cmd *cobra.Command, _ []string) (int64, error) {
		return e.c.ActiveUsers(cmd.Context())
	})
}

func statsGroupCmd(e *env) *cobra.Command {
	return countCmd(e, "group <group-id>", "Number of live users in one group", cobra.ExactArgs(1), func(cmd *cobra.Command, args []string) (int64, error) {
		return e.c.GroupCount(cmd.Context(), args[0])
	})
}

func statsPerGroupCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "per-group",
		Short: "Number of live users in every group, by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := e.c.PerGroup(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, e, m, []string{"GROUP", "USERS"}, func() [][]string { return perGroupRows(m, "") })
		},
	}
}
