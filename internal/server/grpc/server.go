// Package grpc exposes the PointGate services over gRPC. Messages travel
// through the JSON codec of package api; the service descriptor is written
// by hand in service.go.
package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/common"
	"github.com/dmitrijs2005/pointgate/internal/logging"
	"github.com/dmitrijs2005/pointgate/internal/server/services"
	"github.com/dmitrijs2005/pointgate/internal/server/session"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address       string
	accounts      *services.AccountService
	wallets       *services.WalletService
	sessions      *session.Manager
	logger        logging.Logger
	jwtSecret     []byte
	tokenValidity time.Duration
}

func NewGRPCServer(a string, l logging.Logger, as *services.AccountService, ws *services.WalletService, sm *session.Manager,
	secretKey string, tokenValidity time.Duration) (*GRPCServer, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("empty secret key: %w", common.ErrorInvalidInput)
	}
	return &GRPCServer{
		address:       a,
		logger:        l.With("module", "grpc_server"),
		accounts:      as,
		wallets:       ws,
		sessions:      sm,
		jwtSecret:     []byte(secretKey),
		tokenValidity: tokenValidity,
	}, nil
}

// NewServer builds a grpc.Server with the interceptors and the PointGate
// service registered.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.statusInterceptor, s.accessTokenInterceptor))
	srv.RegisterService(&serviceDesc, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			srv.GracefulStop()
		case <-done:
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
