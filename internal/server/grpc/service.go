package grpc

import (
	"context"

	"github.com/dmitrijs2005/pointgate/internal/api"
	"google.golang.org/grpc"
)

// pointGateServer is the handler type checked by RegisterService.
type pointGateServer interface {
	Ping(context.Context, *api.Empty) (*api.PingResponse, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: api.ServiceName,
	HandlerType: (*pointGateServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(api.MethodPing, (*GRPCServer).Ping),
		unary(api.MethodRegister, (*GRPCServer).Register),
		unary(api.MethodLogin, (*GRPCServer).Login),
		unary(api.MethodRequestChallenge, (*GRPCServer).RequestChallenge),
		unary(api.MethodGetAccount, (*GRPCServer).GetAccount),
		unary(api.MethodUpdateProfile, (*GRPCServer).UpdateProfile),
		unary(api.MethodChangePassword, (*GRPCServer).ChangePassword),
		unary(api.MethodResetPassword, (*GRPCServer).ResetPassword),
		unary(api.MethodRegisterByAdmin, (*GRPCServer).RegisterByAdmin),
		unary(api.MethodListAccounts, (*GRPCServer).ListAccounts),
		unary(api.MethodBeginTOTP, (*GRPCServer).BeginTOTP),
		unary(api.MethodConfirmTOTP, (*GRPCServer).ConfirmTOTP),
		unary(api.MethodDisableTOTP, (*GRPCServer).DisableTOTP),
		unary(api.MethodGetWallet, (*GRPCServer).GetWallet),
		unary(api.MethodHistory, (*GRPCServer).History),
		unary(api.MethodInitiateTransfer, (*GRPCServer).InitiateTransfer),
		unary(api.MethodConfirmTransfer, (*GRPCServer).ConfirmTransfer),
		unary(api.MethodTransferPoints, (*GRPCServer).TransferPoints),
		unary(api.MethodRequestAdminCredit, (*GRPCServer).RequestAdminCredit),
		unary(api.MethodAdminCredit, (*GRPCServer).AdminCredit),
		unary(api.MethodCancelTransaction, (*GRPCServer).CancelTransaction),
	},
	Streams: []grpc.StreamDesc{},
}

// unary adapts a handler method to a grpc.MethodDesc, the way generated
// code does for each method.
func unary[Req, Resp any](name string, call func(*GRPCServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(*GRPCServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: api.FullMethod(name),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
