package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/api"
	"github.com/dmitrijs2005/pointgate/internal/common"
	"github.com/dmitrijs2005/pointgate/internal/server/auth"
	"github.com/dmitrijs2005/pointgate/internal/server/session"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const sessionKey ctxKey = "session"

// accessTokenInterceptor resumes the caller's session from the
// access_token metadata. Public methods pass through untouched.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if api.PublicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	userName, err := auth.GetUserNameFromToken(accessToken, s.jwtSecret)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	sess, err := s.sessions.Resume(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, status.Error(codes.Unauthenticated, "unknown account")
		}
		return nil, toStatus(err)
	}

	return handler(context.WithValue(ctx, sessionKey, sess), req)
}

// statusInterceptor logs each call and turns domain errors into gRPC
// statuses.
func (s *GRPCServer) statusInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, cause := handler(ctx, req)
	err := toStatus(cause)

	code := status.Code(err)
	args := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(start)}
	switch code {
	case codes.OK:
		s.logger.Debug(ctx, "call", args...)
	case codes.Internal, codes.Unknown:
		s.logger.Error(ctx, "call failed", append(args, "error", cause)...)
	default:
		s.logger.Info(ctx, "call rejected", append(args, "error", status.Convert(err).Message())...)
	}

	return resp, err
}

// sessionFrom returns the session placed in ctx by accessTokenInterceptor,
// or an anonymous one.
func (s *GRPCServer) sessionFrom(ctx context.Context) *session.Session {
	if sess, ok := ctx.Value(sessionKey).(*session.Session); ok {
		return sess
	}
	return s.sessions.Anonymous()
}
