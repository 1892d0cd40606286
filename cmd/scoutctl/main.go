// Package main implements scoutctl, a command-line client for the learnscout HTTP API.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/learnscout/internal/version"
	"github.com/kailas-cloud/learnscout/pkg/client"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	server  string
	timeout time.Duration
	json    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "scoutctl",
		Short: "CLI for the learnscout search API",
		Long: `scoutctl queries a running learnscout server: search learning resources,
manage tags, preview links and check server health.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	defaultServer := os.Getenv("LEARNSCOUT_URL")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	root.PersistentFlags().StringVar(&g.server, "server", defaultServer, "learnscout server URL (env LEARNSCOUT_URL)")
	root.PersistentFlags().DurationVar(&g.timeout, "timeout", 30*time.Second, "request timeout")
	root.PersistentFlags().BoolVar(&g.json, "json", false, "print raw JSON")

	root.AddCommand(
		newSearchCmd(g),
		newTagsCmd(g),
		newPreviewCmd(g),
		newHealthCmd(g),
		newUsageCmd(g),
	)
	return root
}

func (g *globalFlags) client() (*client.Client, error) {
	c, err := client.New(g.server, client.WithTimeout(g.timeout))
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return c, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
