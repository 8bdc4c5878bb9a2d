package commands

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-sdui/pkg/server"
)

func newServeCommand(g *globals) *cobra.Command {
	var (
		dir   string
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered pages over HTTP",
		Long: `Start a preview server. Each page is backed by one screen that is loaded
on first request and can be refreshed with POST /pages/{page}/refresh.

Routes:
  GET  /pages                 list pages
  GET  /pages/{page}          composed HTML page
  GET  /pages/{page}/units    rendered units and diagnostics as JSON
  POST /pages/{page}/refresh  reload the layout
  GET  /healthz               liveness
  GET  /metrics               Prometheus metrics`,
		Example: `  sdui serve --dir layouts --watch
  sdui serve -c sdui.yaml --addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if dir != "" {
				cfg.Layouts.Dir = dir
				cfg.Layouts.URL = ""
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("watch") {
				cfg.Server.Watch = watch
			}

			engine, closer, err := g.newEngine(cfg)
			if err != nil {
				return err
			}
			defer closer.Close()

			var options []server.Option
			if cfg.Server.Watch && cfg.Layouts.URL == "" {
				options = append(options, server.WithWatchDir(cfg.Layouts.Dir))
			}
			srv, err := server.New(engine, options...)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context(), cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "layouts directory (overrides config)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload pages when layout files change")

	return cmd
}
