package cryptox

import "github.com/dmitrijs2005/imagevault/internal/common"

// KeySize is the content key length in bytes (AES-256).
const KeySize = 32

// GenerateContentKey returns a fresh random content key.
func GenerateContentKey() []byte {
	return common.GenerateRandByteArray(KeySize)
}
