package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/imagevault/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize   = 16
	NonceSize  = 12
	TagSize    = 16
	Iterations = 100000
)

var (
	errEmptyPassword = errors.New("empty password")
	errKeySize       = fmt.Errorf("content key must be %d bytes", KeySize)
)

// DeriveWrappingKey stretches password with PBKDF2-HMAC-SHA256.
func DeriveWrappingKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, Iterations, KeySize, sha256.New)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// WrapKey seals a content key under a key derived from password so it can be
// handed to the server for custody.
//
// A fresh 16-byte salt feeds PBKDF2-HMAC-SHA256 (100000 iterations) to derive
// a 256-bit wrapping key, and a fresh 12-byte nonce is drawn for AES-GCM. The
// derived key is wiped before returning. Wrapping the same key twice gives
// different output.
//
// Parameters:
//   - key: the 32-byte content key to protect.
//   - password: the secret the key is wrapped under. Must not be empty.
//
// Returns:
//   - wrapped: base64(salt ‖ nonce ‖ ciphertext ‖ tag), 104 characters for a
//     32-byte key.
//   - err: non-nil if password is empty or key has the wrong size.
//
// Example:
//
//	key := cryptox.GenerateContentKey()
//	defer common.WipeByteArray(key)
//
//	wrapped, err := cryptox.WrapKey(key, sess.Address())
//	if err != nil {
//	    return err
//	}
//	err = client.StoreKey(ctx, wrapped)
func WrapKey(key []byte, password string) (string, error) {
	if password == "" {
		return "", errEmptyPassword
	}
	if len(key) != KeySize {
		return "", errKeySize
	}

	salt := common.GenerateRandByteArray(SaltSize)
	wk := DeriveWrappingKey(password, salt)
	defer common.WipeByteArray(wk)

	aead, err := newGCM(wk)
	if err != nil {
		return "", err
	}

	nonce := common.GenerateRandByteArray(NonceSize)

	out := make([]byte, 0, SaltSize+NonceSize+KeySize+TagSize)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, key, nil)

	return base64.StdEncoding.EncodeToString(out), nil
}

// UnwrapKey recovers the content key sealed by WrapKey.
//
// Every failure is reported as common.ErrorUnwrap: bad base64, a blob shorter
// than salt, nonce and tag, a wrong password, or any modified byte. The cause
// is attached for logging only, so callers cannot tell a wrong password from
// tampering.
//
// Parameters:
//   - wrapped: the base64 string produced by WrapKey.
//   - password: the secret used when wrapping.
//
// Returns:
//   - key: the 32-byte content key. Wipe it with common.WipeByteArray when
//     done.
//   - err: wraps common.ErrorUnwrap on any failure.
//
// Example:
//
//	wrapped, err := client.FetchKey(ctx, owner, vaultID)
//	if err != nil {
//	    return err
//	}
//	key, err := cryptox.UnwrapKey(wrapped, owner)
//	if errors.Is(err, common.ErrorUnwrap) {
//	    return err
//	}
//	defer common.WipeByteArray(key)
func UnwrapKey(wrapped string, password string) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnwrap, errEmptyPassword)
	}

	raw, err := base64.StdEncoding.DecodeString(wrapped)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnwrap, err)
	}
	if len(raw) < SaltSize+NonceSize+TagSize {
		return nil, fmt.Errorf("%w: blob too short", common.ErrorUnwrap)
	}

	salt := raw[:SaltSize]
	nonce := raw[SaltSize : SaltSize+NonceSize]
	ct := raw[SaltSize+NonceSize:]

	wk := DeriveWrappingKey(password, salt)
	defer common.WipeByteArray(wk)

	aead, err := newGCM(wk)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnwrap, err)
	}

	key, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnwrap, err)
	}
	if len(key) != KeySize {
		common.WipeByteArray(key)
		return nil, fmt.Errorf("%w: %w", common.ErrorUnwrap, errKeySize)
	}

	return key, nil
}
