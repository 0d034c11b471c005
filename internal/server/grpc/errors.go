package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/pointgate/internal/api"
	"github.com/dmitrijs2005/pointgate/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errorCodes = []struct {
	err  error
	code codes.Code
}{
	{common.ErrInvalidToken, codes.Unauthenticated},
	{common.ErrorNotFound, codes.NotFound},
	{common.ErrorUnauthorized, codes.PermissionDenied},
	{common.ErrorInvalidInput, codes.InvalidArgument},
	{common.ErrChallengeExpired, codes.FailedPrecondition},
	{common.ErrChallengeMismatch, codes.FailedPrecondition},
	{common.ErrSecretNotProvisioned, codes.FailedPrecondition},
	{common.ErrInsufficientBalance, codes.FailedPrecondition},
	{common.ErrorAlreadyExists, codes.AlreadyExists},
	{common.ErrAlreadyProvisioned, codes.AlreadyExists},
}

// toStatus converts err to a gRPC status error. The sentinel it wraps
// travels as an ErrorInfo reason so clients can restore it. Statuses and
// nil pass through.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}

	code := codes.Internal
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			code = c.code
			break
		}
	}

	msg := err.Error()
	if code == codes.Internal {
		msg = common.ErrorInternal.Error()
	}

	st := status.New(code, msg)
	reason := api.Reason(err)
	if reason == "" {
		reason = api.Reason(common.ErrorInternal)
	}
	if detailed, derr := st.WithDetails(&errdetails.ErrorInfo{Reason: reason, Domain: api.ErrorDomain}); derr == nil {
		st = detailed
	}
	return st.Err()
}
