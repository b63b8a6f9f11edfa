// Package cli implements userhubctl, the command-line front end of the userhub API.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"userhub/pkg/client"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		output, _ := root.PersistentFlags().GetString("output")
		if output == "json" {
			obj := map[string]any{"error": err.Error()}
			var apiErr *client.APIError
			if errors.As(err, &apiErr) {
				obj["http_status"] = apiErr.Status
				obj["code"] = apiErr.Code
			}
			_ = printJSON(os.Stdout, obj)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// env 把 flag、环境变量解析后的值带给子命令
type env struct {
	host    string
	output  string
	timeout time.Duration
	c       *client.Client
}

func NewRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "userhubctl",
		Short:         "Manage userhub users, groups and permissions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// flag > env > default
			if !cmd.Flags().Changed("host") {
				if v := os.Getenv("USERHUB_HOST"); v != "" {
					e.host = v
				}
			}
			if e.output != "table" && e.output != "json" {
				return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", e.output)
			}
			e.c = client.New(e.host, client.WithTimeout(e.timeout))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&e.host, "host", "http://localhost:8080", "API base URL (env USERHUB_HOST)")
	root.PersistentFlags().StringVarP(&e.output, "output", "o", "table", "Output format (table, json)")
	root.PersistentFlags().DurationVar(&e.timeout, "timeout", 15*time.Second, "Request timeout")

	root.AddCommand(newUsersCmd(e), newGroupsCmd(e), newStatsCmd(e), newHashPasswordCmd())
	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printTable 以制表符对齐输出；rows 每行列数应与 header 一致
func printTable(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	line := func(cols []string) {
		for i, c := range cols {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, c)
		}
		fmt.Fprintln(tw)
	}
	line(header)
	for _, r := range rows {
		line(r)
	}
	return tw.Flush()
}

func render(cmd *cobra.Command, e *env, v any, header []string, rows func() [][]string) error {
	if e.output == "json" {
		return printJSON(cmd.OutOrStdout(), v)
	}
	return printTable(cmd.OutOrStdout(), header, rows())
}
