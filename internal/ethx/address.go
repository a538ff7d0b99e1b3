// Package ethx holds the Ethereum account helpers imagevault relies on:
// address canonicalization and EIP-191 personal_sign challenges.
package ethx

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/imagevault/internal/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// CanonicalAddress validates a hex account address and returns it in the
// lowercase 0x-prefixed form used as the account identity everywhere.
func CanonicalAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if !strings.HasPrefix(addr, "0x") && !strings.HasPrefix(addr, "0X") {
		addr = "0x" + addr
	}
	if !ethcommon.IsHexAddress(addr) {
		return "", fmt.Errorf("%w: invalid address %q", common.ErrorValidation, addr)
	}
	return strings.ToLower(ethcommon.HexToAddress(addr).Hex()), nil
}
