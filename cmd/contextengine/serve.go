package main

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"github.com/easyops/contextengine/pkg/server"
)

func runServe(ctx context.Context, args []string) error {
	var configPath, addr string

	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	fs.StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	if err := parseFlags(fs, args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	if addr == "" {
		addr = a.cfg.Server.Addr
	}
	if a.cfg.Server.Mode != "" {
		gin.SetMode(a.cfg.Server.Mode)
	}

	srv := server.New(a.assembler,
		server.WithAddr(addr),
		server.WithDefaultMaxTokens(a.cfg.Engine.DefaultMaxTokens),
		server.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout),
		server.WithLogger(a.provider.Logger()),
		server.WithTracer(a.provider.Tracer()),
		server.WithMetrics(a.provider.Metrics()),
	)

	return srv.Run(ctx)
}
