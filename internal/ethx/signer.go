package ethx

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs sign-in challenges with an account's private key.
type Signer struct {
	key     *ecdsa.PrivateKey
	address string
}

// NewSigner parses a hex private key, with or without the 0x prefix.
func NewSigner(hexKey string) (*Signer, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}
	return newSignerFromKey(key), nil
}

// GenerateSigner creates a signer for a fresh random key.
func GenerateSigner() (*Signer, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return newSignerFromKey(key), nil
}

func newSignerFromKey(key *ecdsa.PrivateKey) *Signer {
	return &Signer{
		key:     key,
		address: strings.ToLower(crypto.PubkeyToAddress(key.PublicKey).Hex()),
	}
}

// Address returns the canonical address of the signing key.
func (s *Signer) Address() string {
	return s.address
}

// PrivateKey exposes the key for transaction signing.
func (s *Signer) PrivateKey() *ecdsa.PrivateKey {
	return s.key
}

// SignMessage produces a personal_sign signature (65 bytes, V in {27, 28})
// as a 0x-prefixed hex string.
func (s *Signer) SignMessage(message string) (string, error) {
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), s.key)
	if err != nil {
		return "", err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

// RecoverAddress returns the canonical address that produced signature over
// message.
func RecoverAddress(message, signature string) (string, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}
	if len(sig) != crypto.SignatureLength {
		return "", fmt.Errorf("%w: bad signature length", common.ErrorUnauthorized)
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}
	return strings.ToLower(crypto.PubkeyToAddress(*pub).Hex()), nil
}

// VerifySignature checks that address signed message. The comparison is
// case-insensitive.
func VerifySignature(address, message, signature string) error {
	canonical, err := CanonicalAddress(address)
	if err != nil {
		return err
	}
	recovered, err := RecoverAddress(message, signature)
	if err != nil {
		return err
	}
	if recovered != canonical {
		return fmt.Errorf("%w: signature does not match address", common.ErrorUnauthorized)
	}
	return nil
}
