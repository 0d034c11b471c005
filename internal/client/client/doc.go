// Package client contains the client side of the PointGate API.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) covering
//     accounts, challenges, time-based codes, wallets and transfers.
//  2. A gRPC implementation (see GRPCClient) that speaks the JSON codec of
//     package api, injects the access token through an interceptor and maps
//     gRPC statuses back to sentinel errors.
//
// # Error Handling
//
// Failed calls return a *RemoteError. It unwraps to the sentinel the server
// named (common.ErrInsufficientBalance, common.ErrChallengeExpired, ...), so
// callers match with errors.Is. Transport problems unwrap to ErrUnavailable,
// missing or rejected tokens to ErrUnauthorized.
//
// # Concurrency & Contexts
//
// GRPCClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation.
package client
