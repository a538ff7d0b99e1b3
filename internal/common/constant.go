// Package common contains shared constants and sentinel errors used across
// imagevault components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DefaultSignInMessage is the text an account signs to prove possession of
// its private key during authentication.
const DefaultSignInMessage = "Welcome to our DApp! Please sign this message to connect your wallet."

// DefaultVaultDescription is stored when a vault is created without one.
const DefaultVaultDescription = "No Description Provided"
