package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/learnscout/pkg/client"
)

func newTagsCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage resource tags",
		Long: `Read and edit the tags attached to a search result.

Examples:
  scoutctl tags get https://github.com/acme/hooks-lab
  scoutctl tags add https://github.com/acme/hooks-lab beginner
  scoutctl tags rm https://github.com/acme/hooks-lab beginner`,
	}

	run := func(op func(ctx context.Context, c *client.Client, args []string) (client.Tags, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			c, err := g.client()
			if err != nil {
				return err
			}
			t, err := op(cmd.Context(), c, args)
			if err != nil {
				return fmt.Errorf("tags: %w", err)
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), t)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tags:    %s\npopular: %s\n",
				strings.Join(t.Tags, ", "), strings.Join(t.PopularTags, ", "))
			return nil
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get <resource-id>",
			Short: "Show tags of a resource",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, c *client.Client, args []string) (client.Tags, error) {
				return c.Tags(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "add <resource-id> <tag>",
			Short: "Attach a tag",
			Args:  cobra.ExactArgs(2),
			RunE: run(func(ctx context.Context, c *client.Client, args []string) (client.Tags, error) {
				return c.AddTag(ctx, args[0], args[1])
			}),
		},
		&cobra.Command{
			Use:     "rm <resource-id> <tag>",
			Aliases: []string{"remove"},
			Short:   "Detach a tag",
			Args:    cobra.ExactArgs(2),
			RunE: run(func(ctx context.Context, c *client.Client, args []string) (client.Tags, error) {
				return c.RemoveTag(ctx, args[0], args[1])
			}),
		},
	)
	return cmd
}
