package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"backoffice/pkg/mockapi"
)

func (e *env) mockServerCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:         "mock-server",
		Short:       "Serve an in-memory retail API seeded with demo data",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{bootstrapKey: bootstrapMinimal},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = e.cfg.Mock.Addr
			}
			return e.serveMock(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to mock.addr from the config)")
	return cmd
}

// serveMock runs until ctx is cancelled, then shuts the server down.
func (e *env) serveMock(ctx context.Context, addr string) error {
	mock, err := mockapi.New(e.logger)
	if err != nil {
		return fmt.Errorf("unable to build mock api: %w", err)
	}
	defer mock.Close()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("unable to listen on %s: %w", addr, err)
	}

	server := &http.Server{
		Handler:      mock.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	e.logger.Info("mock api listening", zap.String("addr", ln.Addr().String()))
	fmt.Fprintf(e.streams.Out, "Mock API is running on http://%s/api (sign in as %s / %s)\n",
		ln.Addr(), mockapi.SeedEmail, mockapi.SeedPassword)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped unexpectedly: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
