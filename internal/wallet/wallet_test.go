package wallet

import (
    "context"
    "encoding/hex"
    "math/big"
    "strings"
    "testing"
    "time"

    "github.com/ethereum/go-ethereum/common"
    "github.com/ethereum/go-ethereum/core/types"
    "github.com/ethereum/go-ethereum/crypto"
    "github.com/pkg/errors"

    "github.com/StabilityNexus/hackhub-explorer/internal/eth"
    "github.com/StabilityNexus/hackhub-explorer/internal/mock"
)

const chainID = 534351

var hack = common.HexToAddress("0x000000000000000000000000000000000000a001")

func newWallet(t *testing.T) (*KeyWallet, *mock.ChainNode) {
    t.Helper()
    node := mock.NewChainNode(chainID)
    key, err := crypto.GenerateKey()
    if err != nil { t.Fatal(err) }
    w, err := NewKeyWallet(context.Background(), node.Dial(t), "0x"+hex.EncodeToString(crypto.FromECDSA(key)), nil)
    if err != nil { t.Fatal(err) }
    if w.Account() != crypto.PubkeyToAddress(key.PublicKey) || w.ChainID() != chainID {
        t.Fatalf("account %s chain %d", w.Account().Hex(), w.ChainID())
    }
    return w, node
}

func TestVoteIsSignedForChain(t *testing.T) {
    w, node := newWallet(t)
    node.ReceiptAfter = 2
    ctx := context.Background()

    hash, err := Vote(ctx, w, hack, 2, big.NewInt(5))
    if err != nil { t.Fatal(err) }
    sent := node.Sent()
    if len(sent) != 1 || sent[0].Hash() != hash { t.Fatalf("sent: %v", sent) }
    tx := sent[0]
    if *tx.To() != hack || tx.ChainId().Uint64() != chainID || tx.Gas() != 100_000 {
        t.Fatalf("tx: to=%s chain=%s gas=%d", tx.To().Hex(), tx.ChainId(), tx.Gas())
    }
    from, err := types.Sender(types.LatestSignerForChainID(big.NewInt(chainID)), tx)
    if err != nil || from != w.Account() { t.Fatalf("sender %s err %v", from.Hex(), err) }

    m, err := eth.HackathonABI.MethodById(tx.Data()[:4])
    if err != nil || m.Name != "vote" { t.Fatalf("method: %v %v", m, err) }
    args, err := m.Inputs.Unpack(tx.Data()[4:])
    if err != nil || args[0].(*big.Int).Int64() != 2 || args[1].(*big.Int).Int64() != 5 {
        t.Fatalf("args: %v %v", args, err)
    }

    r, err := w.WaitReceipt(ctx, hash, time.Millisecond)
    if err != nil || r.Status != types.ReceiptStatusSuccessful || r.TxHash != hash {
        t.Fatalf("receipt: %+v %v", r, err)
    }
}

func TestRejectionKeepsNodeMessage(t *testing.T) {
    w, node := newWallet(t)
    node.Reject = func(common.Address, []byte) string { return "no tokens left to vote" }
    _, err := Vote(context.Background(), w, hack, 0, big.NewInt(1))
    var txErr *TxError
    if !errors.As(err, &txErr) || txErr.Method != "vote" {
        t.Fatalf("err = %v", err)
    }
    if !strings.Contains(err.Error(), "no tokens left to vote") { t.Fatalf("message lost: %v", err) }
    if len(node.Sent()) != 0 { t.Fatalf("rejected tx was broadcast") }
}

func TestRevertedReceipt(t *testing.T) {
    w, node := newWallet(t)
    node.TxStatus = func(*types.Transaction) uint64 { return types.ReceiptStatusFailed }
    ctx := context.Background()
    hash, err := Conclude(ctx, w, hack)
    if err != nil { t.Fatal(err) }
    r, err := w.WaitReceipt(ctx, hash, time.Millisecond)
    if !errors.Is(err, ErrReverted) || r == nil { t.Fatalf("receipt %v err %v", r, err) }
}

func TestWaitReceiptHonoursContext(t *testing.T) {
    w, _ := newWallet(t)
    ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
    defer cancel()
    if _, err := w.WaitReceipt(ctx, common.HexToHash("0x01"), time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
        t.Fatalf("err = %v", err)
    }
}

func TestBadKey(t *testing.T) {
    node := mock.NewChainNode(chainID)
    if _, err := NewKeyWallet(context.Background(), node.Dial(t), "zz", nil); err == nil {
        t.Fatal("expected error")
    }
}

func TestActionsThroughInterface(t *testing.T) {
    w := &mock.MockWallet{Chain: chainID}
    ctx := context.Background()
    if _, err := ClaimPrize(ctx, w, hack, 3); err != nil { t.Fatal(err) }
    if _, err := SubmitProject(ctx, w, hack, "https://git/x", "https://docs/x", hack); err != nil { t.Fatal(err) }
    if len(w.Calls) != 2 || w.Calls[0].Method != "claimPrize" || w.Calls[1].Method != "submitProject" {
        t.Fatalf("calls: %+v", w.Calls)
    }
}
