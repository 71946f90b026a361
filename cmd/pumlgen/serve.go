package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/syssam/pumlgen/compiler/gen"
	"github.com/syssam/pumlgen/contrib/httpapi"
	"github.com/syssam/pumlgen/contrib/mcpserver"
)

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parser over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.v.BindPFlag("addr", cmd.Flags().Lookup("addr")); err != nil {
				return err
			}
			opts, err := c.parseOptions()
			if err != nil {
				return err
			}
			apiOpts := []httpapi.Option{httpapi.WithGenOptions(opts...), httpapi.WithLogger(c.log)}
			if ttl, _ := cmd.Flags().GetDuration("cache-ttl"); ttl > 0 {
				cache, err := httpapi.NewMemoryCache(httpapi.DefaultCacheSize)
				if err != nil {
					return err
				}
				apiOpts = append(apiOpts, httpapi.WithCache(cache, ttl))
			}
			api := httpapi.New(apiOpts...)
			srv := &http.Server{
				Addr:              c.v.GetString("addr"),
				Handler:           api.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return c.serve(cmd.Context(), srv)
		},
	}
	cmd.Flags().String("addr", ":8080", "Listen address")
	cmd.Flags().Duration("cache-ttl", 10*time.Minute, "Cache rendered responses for this long; 0 disables the cache")
	return cmd
}

func (c *cli) serve(ctx context.Context, srv *http.Server) error {
	errc := make(chan error, 1)
	go func() {
		c.log.Info("listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (c *cli) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP tool server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := c.parseOptions()
			if err != nil {
				return err
			}
			return mcpserver.RunStdio(cmd.Context(), mcpserver.NewServer(mcpserver.NewService(opts...)))
		},
	}
}

// parseOptions returns the parser options of the global flags, for the
// servers that build a fresh configuration per request.
func (c *cli) parseOptions() ([]gen.Option, error) {
	if _, err := c.config(); err != nil {
		return nil, err
	}
	var opts []gen.Option
	if c.v.GetBool("strict_attributes") {
		opts = append(opts, gen.WithStrictAttributes())
	}
	if c.v.GetBool("crows_foot") {
		opts = append(opts, gen.WithCrowsFoot())
	}
	return opts, nil
}
