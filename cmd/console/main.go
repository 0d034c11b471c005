package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/pointgate/internal/buildinfo"
	"github.com/dmitrijs2005/pointgate/internal/client/cli"
	"github.com/dmitrijs2005/pointgate/internal/client/client"
	"github.com/dmitrijs2005/pointgate/internal/client/config"
	"github.com/dmitrijs2005/pointgate/internal/logging"
	"github.com/dmitrijs2005/pointgate/internal/server"

	serverconfig "github.com/dmitrijs2005/pointgate/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, "text", cfg.LogLevel)

	endpoint := cfg.ServerEndpointAddr
	if cfg.InProcess() {
		addr, err := startLocalServer(ctx, logger)
		if err != nil {
			log.Fatalf("%v", err)
		}
		endpoint = addr
	}

	api, err := client.NewPointGateClient(endpoint)
	if err != nil {
		log.Fatalf("%v", err)
	}
	api.SetCallTimeout(cfg.CallTimeout)

	app := cli.NewApp(cfg, api, logger, os.Stdin, os.Stdout)
	app.Run(ctx)

}

// startLocalServer runs an in-memory server on a loopback port. One-time
// codes are printed to stdout so the console user can type them back.
func startLocalServer(ctx context.Context, logger logging.Logger) (string, error) {
	scfg := &serverconfig.Config{}
	scfg.LoadDefaults()

	app, err := server.NewApp(ctx, scfg, server.WithLogger(logger), server.WithCodesTo(os.Stdout))
	if err != nil {
		return "", err
	}

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		_ = app.Close()
		return "", err
	}

	go func() {
		defer app.Close()
		if err := app.Serve(ctx, lis); err != nil {
			logger.Error(ctx, "local server error", "error", err)
		}
	}()

	return lis.Addr().String(), nil
}
