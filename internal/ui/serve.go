package ui

import (
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/dayblocks/internal/api"
)

func (a *App) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the schedule over a JSON HTTP API",
		Long: `Start the HTTP API.

Endpoints:
  GET    /api/tasks
  POST   /api/tasks
  DELETE /api/tasks
  PUT    /api/tasks/:id
  DELETE /api/tasks/:id
  GET    /api/tasks/:id/shift?end=HH:MM
  PUT    /api/tasks/:id/shift
  GET    /api/overlap?start=HH:MM&end=HH:MM&exclude_id=N
  GET    /healthz
  GET    /metrics`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := a.ensureStore(ctx); err != nil {
				return err
			}

			if !a.debug {
				gin.SetMode(gin.ReleaseMode)
			}
			if addr == "" {
				addr = a.config.Server.Addr
			}

			srv := api.New(a.store, a.log, api.Options{
				Config:       a.config.Server,
				DefaultColor: a.config.UI.DefaultColor,
				Version:      Version,
			})
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
