package wallet

import (
    "context"
    "crypto/ecdsa"
    "math/big"
    "strings"
    "time"

    "github.com/ethereum/go-ethereum"
    "github.com/ethereum/go-ethereum/accounts/abi"
    "github.com/ethereum/go-ethereum/common"
    "github.com/ethereum/go-ethereum/core/types"
    "github.com/ethereum/go-ethereum/crypto"
    "github.com/ethereum/go-ethereum/ethclient"
    "github.com/pkg/errors"
    "go.uber.org/zap"

    "github.com/StabilityNexus/hackhub-explorer/internal/eth"
)

var ErrReverted = errors.New("transaction reverted")

// Wallet submits contract transactions for one account.
type Wallet interface {
    ChainID() uint64
    Account() common.Address
    Send(ctx context.Context, to common.Address, a *abi.ABI, method string, value *big.Int, args ...interface{}) (common.Hash, error)
    WaitReceipt(ctx context.Context, hash common.Hash, poll time.Duration) (*types.Receipt, error)
}

// TxError carries the node's message for a rejected or reverted
// transaction.
type TxError struct {
    Method string
    Hash   common.Hash
    Err    error
}

func (e *TxError) Error() string { return e.Method + ": " + e.Err.Error() }

func (e *TxError) Unwrap() error { return e.Err }

// KeyWallet signs legacy transactions with a raw private key.
type KeyWallet struct {
    ec      *ethclient.Client
    key     *ecdsa.PrivateKey
    from    common.Address
    chainID *big.Int
    Log     *zap.Logger
}

func NewKeyWallet(ctx context.Context, c *eth.Client, hexKey string, log *zap.Logger) (*KeyWallet, error) {
    key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
    if err != nil { return nil, errors.Wrap(err, "private key") }
    id, err := c.ChainID(ctx)
    if err != nil { return nil, errors.Wrap(err, "chain id") }
    if log == nil { log = zap.NewNop() }
    from := crypto.PubkeyToAddress(key.PublicKey)
    return &KeyWallet{
        ec: c.Eth(), key: key, from: from,
        chainID: new(big.Int).SetUint64(id),
        Log:     log.Named("wallet").With(zap.String("account", from.Hex())),
    }, nil
}

func (w *KeyWallet) ChainID() uint64 { return w.chainID.Uint64() }

func (w *KeyWallet) Account() common.Address { return w.from }

func (w *KeyWallet) Send(ctx context.Context, to common.Address, a *abi.ABI, method string, value *big.Int, args ...interface{}) (common.Hash, error) {
    data, err := a.Pack(method, args...)
    if err != nil { return common.Hash{}, errors.Wrapf(err, "pack %s", method) }
    if value == nil { value = new(big.Int) }

    nonce, err := w.ec.PendingNonceAt(ctx, w.from)
    if err != nil { return common.Hash{}, errors.Wrap(err, "nonce") }
    price, err := w.ec.SuggestGasPrice(ctx)
    if err != nil { return common.Hash{}, errors.Wrap(err, "gas price") }
    gas, err := w.ec.EstimateGas(ctx, ethereum.CallMsg{From: w.from, To: &to, Value: value, Data: data})
    if err != nil { return common.Hash{}, &TxError{Method: method, Err: err} }

    tx := types.NewTx(&types.LegacyTx{Nonce: nonce, To: &to, Value: value, Gas: gas, GasPrice: price, Data: data})
    signed, err := types.SignTx(tx, types.LatestSignerForChainID(w.chainID), w.key)
    if err != nil { return common.Hash{}, errors.Wrap(err, "sign") }
    if err := w.ec.SendTransaction(ctx, signed); err != nil {
        return common.Hash{}, &TxError{Method: method, Hash: signed.Hash(), Err: err}
    }
    w.Log.Info("transaction sent", zap.String("method", method), zap.String("to", to.Hex()), zap.String("hash", signed.Hash().Hex()))
    return signed.Hash(), nil
}

// WaitReceipt polls until the transaction is mined. A failed status is
// returned together with the receipt.
func (w *KeyWallet) WaitReceipt(ctx context.Context, hash common.Hash, poll time.Duration) (*types.Receipt, error) {
    if poll <= 0 { poll = time.Second }
    t := time.NewTicker(poll)
    defer t.Stop()
    for {
        r, err := w.ec.TransactionReceipt(ctx, hash)
        switch {
        case err == nil:
            if r.Status != types.ReceiptStatusSuccessful {
                return r, &TxError{Method: "receipt", Hash: hash, Err: ErrReverted}
            }
            return r, nil
        case !errors.Is(err, ethereum.NotFound):
            return nil, errors.Wrapf(err, "receipt %s", hash.Hex())
        }
        select {
        case <-ctx.Done():
            return nil, ctx.Err()
        case <-t.C:
        }
    }
}
