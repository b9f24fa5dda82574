package mock

import (
    "context"
    "math/big"
    "sync"
    "time"

    "github.com/ethereum/go-ethereum/accounts/abi"
    "github.com/ethereum/go-ethereum/common"
    "github.com/ethereum/go-ethereum/core/types"
    "github.com/ethereum/go-ethereum/crypto"
)

// SentCall is one transaction recorded by MockWallet.
type SentCall struct {
    To     common.Address
    Method string
    Value  *big.Int
    Args   []interface{}
}

type MockWallet struct {
    mu      sync.Mutex
    Chain   uint64
    From    common.Address
    SendErr error
    Calls   []SentCall
}

func (m *MockWallet) ChainID() uint64 { return m.Chain }

func (m *MockWallet) Account() common.Address { return m.From }

func (m *MockWallet) Send(ctx context.Context, to common.Address, a *abi.ABI, method string, value *big.Int, args ...interface{}) (common.Hash, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.SendErr != nil { return common.Hash{}, m.SendErr }
    if _, err := a.Pack(method, args...); err != nil { return common.Hash{}, err }
    m.Calls = append(m.Calls, SentCall{To: to, Method: method, Value: value, Args: args})
    return crypto.Keccak256Hash(to.Bytes(), []byte(method), big.NewInt(int64(len(m.Calls))).Bytes()), nil
}

func (m *MockWallet) WaitReceipt(ctx context.Context, hash common.Hash, poll time.Duration) (*types.Receipt, error) {
    return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: hash, BlockNumber: big.NewInt(1)}, nil
}
