// Package cli provides the interactive PointGate console.
//
// The console talks to the server over gRPC only. It prompts for
// credentials, watches connectivity in the background and runs a REPL
// over account, wallet and transfer commands. Operations that need a
// one-time code ask the server to issue a challenge first and then read
// the delivered code from the user.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher and runREPL for details.
package cli
