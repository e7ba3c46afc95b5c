package cmd

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/GonzoDMX/uridx/internal/api"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Launch the tool façade as an HTTP server (§6.3)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, closer, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer closer()

			logger := log.New(os.Stderr, "uridx ", log.LstdFlags)

			server := &api.Server{Facade: f}
			mux := api.NewMux(server)
			handler := api.MiddlewareChain(mux, logger)

			logger.Printf("listening on %s", addr)
			httpServer := &http.Server{Addr: addr, Handler: handler}
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8085", "address to listen on")
	return cmd
}
