package cryptox

import (
	"fmt"

	"github.com/dmitrijs2005/imagevault/internal/common"
)

// EncryptFile seals file bytes with AES-256-GCM under a content key.
//
// A new random 12-byte nonce is drawn on every call and prepended to the
// output, so the payload is self-contained and can be stored as a single
// content-addressed blob. Encrypting the same file twice yields different
// blobs.
//
// Parameters:
//   - plaintext: the raw file bytes. May be empty.
//   - key: the content key; must be a valid AES key length.
//
// Returns:
//   - sealed: nonce ‖ ciphertext ‖ tag, 28 bytes longer than plaintext.
//   - err: non-nil if key is not a valid AES key.
//
// Example:
//
//	data, err := os.ReadFile("cat.png")
//	if err != nil {
//	    return err
//	}
//	sealed, err := cryptox.EncryptFile(data, key)
//	if err != nil {
//	    return err
//	}
//	hash, err := client.PutBlob(ctx, vaultID, sealed)
func EncryptFile(plaintext, key []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aead.NonceSize())

	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, nil), nil
}

// DecryptFile opens a payload produced by EncryptFile. A wrong key, a
// truncated payload or any modification yields common.ErrorDecrypt.
func DecryptFile(sealed, key []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorDecrypt, err)
	}

	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, fmt.Errorf("%w: payload too short", common.ErrorDecrypt)
	}

	nonce, ct := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorDecrypt, err)
	}
	return plaintext, nil
}
