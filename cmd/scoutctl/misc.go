package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newPreviewCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <url>",
		Short: "Show the summary card of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			p, err := c.Preview(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("preview: %w", err)
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), p)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, p.Title)
			if p.Summary != "" {
				fmt.Fprintln(out, p.Summary)
			}
			return nil
		},
	}
}

func newHealthCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			h, err := c.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("health: %w", err)
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), h)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "status: %s\n", h.Status)
			names := make([]string, 0, len(h.Checks))
			for k := range h.Checks {
				names = append(names, k)
			}
			sort.Strings(names)
			for _, k := range names {
				fmt.Fprintf(out, "  %-10s %s\n", k, h.Checks[k])
			}
			fmt.Fprintf(out, "sources: %v\n", h.Sources)
			return nil
		},
	}
}

func newUsageCmd(g *globalFlags) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show language model token usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			u, err := c.Usage(cmd.Context(), period)
			if err != nil {
				return fmt.Errorf("usage: %w", err)
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), u)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "PROVIDER\tPERIOD\tUSED\tLIMIT\tREMAINING\n")
			for _, p := range u.Providers {
				limit := "unlimited"
				if p.Limit > 0 {
					limit = fmt.Sprint(p.Limit)
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\n", p.Provider, u.Period, p.Used, limit, p.Remaining)
			}
			return w.Flush() //nolint:wrapcheck // terminal write
		},
	}
	cmd.Flags().StringVar(&period, "period", "day", "day or month")
	return cmd
}
