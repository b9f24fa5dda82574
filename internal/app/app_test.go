package app

import (
    "context"
    "net/http/httptest"
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/ethereum/go-ethereum/common"

    "github.com/StabilityNexus/hackhub-explorer/internal/config"
    "github.com/StabilityNexus/hackhub-explorer/internal/hackathons"
    "github.com/StabilityNexus/hackhub-explorer/internal/mock"
)

var (
    factory = common.HexToAddress("0x00000000000000000000000000000000000000fa")
    hackA   = common.HexToAddress("0x000000000000000000000000000000000000a001")
    usdc    = common.HexToAddress("0x00000000000000000000000000000000000000e1")
)

func node(t *testing.T) string {
    t.Helper()
    n := mock.NewChainNode(534351)
    mock.SeedFactory(n, factory, mock.Factory{Hackathons: []common.Address{hackA}})
    mock.SeedHackathon(n, hackA, mock.Hackathon{Name: "Alpha", Start: 100, End: 200})
    ts := httptest.NewServer(n)
    t.Cleanup(ts.Close)
    return ts.URL
}

func TestWireWithRedis(t *testing.T) {
    mr := miniredis.RunT(t)
    dir := t.TempDir()
    tokens := filepath.Join(dir, "tokens.yaml")
    _ = os.WriteFile(tokens, []byte("tokens:\n  - {chain_id: 534351, address: \""+usdc.Hex()+"\", symbol: USDC, decimals: 6}\n"), 0o600)

    ctx := context.Background()
    a, err := New(ctx, config.Common{
        RPCURL: node(t), Factory: factory.Hex(), RedisAddr: mr.Addr(),
        CacheTTL: time.Minute, PageSize: 5, TokensFile: tokens,
    }, nil)
    if err != nil { t.Fatal(err) }
    defer a.Close()

    if a.ChainID != 534351 { t.Fatalf("chain id from node: %d", a.ChainID) }
    if a.Store != nil { t.Fatalf("postgres wired without a DSN") }
    if sym, dec, err := a.Tokens.Token(ctx, a.ChainID, usdc); err != nil || sym != "USDC" || dec != 6 {
        t.Fatalf("registry not seeded: %s %d %v", sym, dec, err)
    }

    res, err := a.Service.Explore(ctx, hackathons.ExploreQuery{Page: 1}, hackathons.Options{})
    if err != nil { t.Fatal(err) }
    if len(res.Data.Items) != 1 || res.Data.Items[0].Name != "Alpha" || res.Data.PageSize != 5 {
        t.Fatalf("page: %+v", res.Data)
    }
    if len(mr.Keys()) != 1 { t.Fatalf("redis keys: %v", mr.Keys()) }
}

func TestWireErrors(t *testing.T) {
    ctx := context.Background()
    if _, err := New(ctx, config.Common{RPCURL: node(t), Factory: "nope"}, nil); err == nil {
        t.Fatal("bad factory accepted")
    }
    if _, err := New(ctx, config.Common{RPCURL: node(t), Factory: factory.Hex(), RedisAddr: "127.0.0.1:1"}, nil); err == nil {
        t.Fatal("unreachable redis accepted")
    }
}

func TestWireChainIDMismatch(t *testing.T) {
    ctx := context.Background()
    if _, err := New(ctx, config.Common{RPCURL: node(t), Factory: factory.Hex(), ChainID: 1}, nil); err == nil {
        t.Fatal("CHAIN_ID=1 accepted against a node on 534351")
    }
    a, err := New(ctx, config.Common{RPCURL: node(t), Factory: factory.Hex(), ChainID: 534351}, nil)
    if err != nil { t.Fatal(err) }
    defer a.Close()
    if a.ChainID != 534351 { t.Fatalf("chain id: %d", a.ChainID) }
}

func TestWireMemoryCacheDefaultSize(t *testing.T) {
    a, err := New(context.Background(), config.Common{RPCURL: node(t), Factory: factory.Hex()}, nil)
    if err != nil { t.Fatalf("zero cache size should fall back to a default: %v", err) }
    defer a.Close()
    if a.Cache == nil { t.Fatal("no cache store wired") }
}
