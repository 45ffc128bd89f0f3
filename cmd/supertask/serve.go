package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Joseda-hg/supertask/internal/web"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a read-only task board and CSV export over HTTP",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			if port == 0 {
				port = rt.cfg.WebPort
			}
			rt.session.Init(ctx)

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", port),
				Handler:           web.NewServer(rt.session, rt.log).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			rt.log.WithField("addr", srv.Addr).Info("serving")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}),
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (defaults to web_port)")
	return cmd
}
