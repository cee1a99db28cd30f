package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/proctor/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve health, metrics and statistics over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			v.Set("http.addr", addr)
		}
		e, err := bootstrap(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		handler := httpapi.NewRouter(e.svc, httpapi.Options{
			CORSOrigins: e.cfg.HTTP.CORSOrigins,
			Logger:      e.logger.Named("http"),
		})
		return httpapi.Serve(ctx, e.cfg.HTTP.Addr, handler, e.logger)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default http.addr)")
}
