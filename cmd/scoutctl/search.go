package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/learnscout/pkg/client"
)

func newSearchCmd(g *globalFlags) *cobra.Command {
	var platform string
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search learning resources",
		Long: `Search GitHub, YouTube, Reddit, the Internet Archive and freeCodeCamp at once.

Examples:
  # Search every platform
  scoutctl search react hooks

  # Only YouTube
  scoutctl search --platform youtube rust ownership`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			res, err := c.Search(cmd.Context(), strings.Join(args, " "), platform)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), res.Items)
			}
			printItems(cmd, res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&platform, "platform", "p", client.PlatformAll,
		"platform filter: all, github, youtube, reddit, archive, freecodecamp")
	return cmd
}

func printItems(cmd *cobra.Command, res client.SearchResult) {
	out := cmd.OutOrStdout()
	if len(res.Items) == 0 {
		fmt.Fprintln(out, "No results.")
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tPLATFORM\tTYPE\tSCORE\tTITLE\tURL")
		for i, it := range res.Items {
			fmt.Fprintf(w, "%d\t%s\t%s\t%.0f\t%s\t%s\n", i+1, it.Platform, it.Type, it.Relevance, it.Title, it.URL)
		}
		_ = w.Flush()
	}

	if len(res.FailedSources) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "unavailable sources: %s\n", strings.Join(res.FailedSources, ", "))
	}
	if res.RewriterTokens > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "rewriter tokens: %d\n", res.RewriterTokens)
	}
}
