package ledger

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/dmitrijs2005/imagevault/internal/ethx"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// AccessContractABI covers the write methods of the vault access contract.
const AccessContractABI = `[
 {"type":"function","name":"createVault","stateMutability":"nonpayable","inputs":[{"name":"vaultId","type":"string"},{"name":"owner","type":"address"}],"outputs":[]},
 {"type":"function","name":"grantAccess","stateMutability":"nonpayable","inputs":[{"name":"vaultId","type":"string"},{"name":"user","type":"address"},{"name":"expiresAt","type":"uint256"}],"outputs":[]},
 {"type":"function","name":"revokeAccess","stateMutability":"nonpayable","inputs":[{"name":"vaultId","type":"string"},{"name":"user","type":"address"}],"outputs":[]}
]`

// EVMConfig configures the on-chain ledger.
type EVMConfig struct {
	RPCURL          string
	ContractAddress string
	OperatorKey     string
	ChainID         int64
}

// transactor is the part of *bind.BoundContract used here.
type transactor interface {
	Transact(opts *bind.TransactOpts, method string, params ...interface{}) (*types.Transaction, error)
}

var (
	dialRPC = func(ctx context.Context, url string) (*ethclient.Client, error) {
		return ethclient.DialContext(ctx, url)
	}

	waitMined = func(ctx context.Context, b bind.DeployBackend, tx *types.Transaction) (*types.Receipt, error) {
		return bind.WaitMined(ctx, b, tx)
	}
)

// EVMLedger sends access transactions to the contract, signed by the operator
// key, and waits for each to be mined.
type EVMLedger struct {
	client   *ethclient.Client
	backend  bind.DeployBackend
	contract transactor
	opts     *bind.TransactOpts
}

func NewEVMLedger(ctx context.Context, c EVMConfig) (*EVMLedger, error) {
	if !ethcommon.IsHexAddress(c.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", c.ContractAddress)
	}

	signer, err := ethx.NewSigner(c.OperatorKey)
	if err != nil {
		return nil, fmt.Errorf("invalid operator key: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(AccessContractABI))
	if err != nil {
		return nil, err
	}

	client, err := dialRPC(ctx, c.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("error dialing %s: %w", c.RPCURL, err)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(signer.PrivateKey(), big.NewInt(c.ChainID))
	if err != nil {
		client.Close()
		return nil, err
	}

	address := ethcommon.HexToAddress(c.ContractAddress)
	contract := bind.NewBoundContract(address, parsed, client, client, client)

	return &EVMLedger{client: client, backend: client, contract: contract, opts: opts}, nil
}

func (l *EVMLedger) RegisterVault(ctx context.Context, vaultID, owner string) (*Receipt, error) {
	return l.transact(ctx, "createVault", vaultID, ethcommon.HexToAddress(owner))
}

func (l *EVMLedger) GrantAccess(ctx context.Context, vaultID, grantee string, expiresAt *time.Time) (*Receipt, error) {
	return l.transact(ctx, "grantAccess", vaultID, ethcommon.HexToAddress(grantee), big.NewInt(expiryMillis(expiresAt)))
}

func (l *EVMLedger) RevokeAccess(ctx context.Context, vaultID, grantee string) (*Receipt, error) {
	return l.transact(ctx, "revokeAccess", vaultID, ethcommon.HexToAddress(grantee))
}

func (l *EVMLedger) Close() error {
	if l.client != nil {
		l.client.Close()
	}
	return nil
}

func (l *EVMLedger) transact(ctx context.Context, method string, params ...interface{}) (*Receipt, error) {
	opts := *l.opts
	opts.Context = ctx

	tx, err := l.contract.Transact(&opts, method, params...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	receipt, err := waitMined(ctx, l.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("%s: waiting for %s: %w", method, tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: %s in %s", ErrLedgerReverted, method, tx.Hash().Hex())
	}

	var block uint64
	if receipt.BlockNumber != nil {
		block = receipt.BlockNumber.Uint64()
	}

	return &Receipt{TxHash: receipt.TxHash.Hex(), Block: block}, nil
}
