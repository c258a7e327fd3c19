package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fiber/internal/inspect"
)

func serveCmd(g *globals) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live inspector",
		Long: `Serve the inspector over HTTP.

Post tree files to /render and watch the scheduler commit them:

  curl --data-binary @tree.yaml 'localhost:7070/render?wait=true'
  curl localhost:7070/tree
  curl localhost:7070/mutations

Commits are streamed as JSON on the /ws WebSocket and metrics are
exposed on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Inspect.Addr = addr
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := inspect.New(inspect.Options{
				Config: cfg,
				Logger: logger(cfg, cmd.ErrOrStderr()),
			})
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")

	return cmd
}
