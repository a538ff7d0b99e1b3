// Package cryptox implements the client-side cryptography of imagevault:
// content key generation, the password-based key wrapper used to store
// content keys at rest, and the AES-GCM file cipher.
//
// Wrapped keys are base64(salt ‖ nonce ‖ ciphertext) where the wrapping key is
// PBKDF2-HMAC-SHA256 over the password with 100000 iterations. Sealed files
// are nonce ‖ ciphertext ‖ tag.
//
// The wrapping password is the owning account's lowercase address. That value
// is public, so wrapping is a storage envelope rather than a confidentiality
// boundary; access to wrapped keys is gated by the server's custody checks.
package cryptox
