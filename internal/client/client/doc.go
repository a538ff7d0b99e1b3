// Package client talks to the imagevault backend.
//
// GRPCClient implements Client over the JSON-coded VaultService. It keeps the
// access token issued at sign-in, attaches it to every call through a unary
// interceptor and maps gRPC status codes back onto the sentinel errors in
// internal/common, so callers can match them with errors.Is.
//
// InitDatabase opens the CLI's sqlite file and applies the embedded goose
// migrations.
package client
