package cli

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/symplace/internal/api"
	"github.com/matzehuels/symplace/pkg/config"
)

// serveCommand creates the serve command running the HTTP placement API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		configPath string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP placement API",
		Long: `Run an HTTP server exposing the placement engine.

Endpoints:
  POST /v1/place   problem text in, JSON solution out
  GET  /healthz    liveness probe

Query parameters on /v1/place: seed (uint) overrides the configured seed,
timeout (duration) caps the solve budget.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			handler := api.New(cfg, timeout, c.Logger)

			r := chi.NewRouter()
			r.Use(middleware.RequestID)
			r.Use(middleware.RealIP)
			r.Use(middleware.Recoverer)
			r.Mount("/", handler.Routes())

			srv := &http.Server{
				Addr:              addr,
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Shut down when the command context is cancelled (SIGINT).
			go func() {
				<-cmd.Context().Done()
				_ = srv.Close()
			}()

			c.Logger.Info("serving placement API", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8732", "listen address")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML configuration file")
	cmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "per-request solve budget")

	return cmd
}
