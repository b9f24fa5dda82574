package mock

import (
    "net/http/httptest"
    "testing"

    "github.com/ethereum/go-ethereum/rpc"

    "github.com/StabilityNexus/hackhub-explorer/internal/eth"
)

// Dial serves n over httptest and returns a client bound to it. Both are
// closed when the test ends.
func (n *ChainNode) Dial(t testing.TB) *eth.Client {
    t.Helper()
    ts := httptest.NewServer(n)
    t.Cleanup(ts.Close)
    rc, err := rpc.DialHTTP(ts.URL)
    if err != nil { t.Fatalf("dial: %v", err) }
    c := eth.NewClient(rc)
    t.Cleanup(c.Close)
    return c
}
