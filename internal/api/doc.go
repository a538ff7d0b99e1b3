// Package api defines the gRPC contract between the imagevault CLI and
// server: request/response messages, the VaultService descriptor, and a typed
// client stub.
//
// Messages are plain Go structs carried by a JSON codec registered under
// CodecName, so both ends must select that content subtype. The server picks
// it up from the codec registry; NewVaultServiceClient adds the call option.
package api
