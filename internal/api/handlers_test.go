package api

import (
    "context"
    "encoding/json"
    "math/big"
    "net/http"
    "net/http/httptest"
    "net/url"
    "strings"
    "testing"
    "time"

    "github.com/ethereum/go-ethereum/common"
    "github.com/google/uuid"
    "github.com/pkg/errors"

    "github.com/StabilityNexus/hackhub-explorer/internal/cache"
    "github.com/StabilityNexus/hackhub-explorer/internal/eth"
    "github.com/StabilityNexus/hackhub-explorer/internal/hackathons"
    "github.com/StabilityNexus/hackhub-explorer/internal/metadata"
    "github.com/StabilityNexus/hackhub-explorer/internal/mock"
    "github.com/StabilityNexus/hackhub-explorer/internal/models"
    "github.com/StabilityNexus/hackhub-explorer/internal/view"
)

const chainID = 534351

var (
    factory = common.HexToAddress("0x00000000000000000000000000000000000000fa")
    hackA   = common.HexToAddress("0x000000000000000000000000000000000000a001")
    org     = common.HexToAddress("0x00000000000000000000000000000000000000b1")
    usdc    = common.HexToAddress("0x00000000000000000000000000000000000000e1")
)

func newServer(t *testing.T) (*httptest.Server, *mock.MockReader) {
    t.Helper()
    r := mock.NewMockReader()
    h := eth.HackathonInfo{
        Address: hackA, Name: "Alpha", StartTime: big.NewInt(100), EndTime: big.NewInt(200),
        Organizer: org, JudgeCount: big.NewInt(0), ProjectCount: big.NewInt(0), TotalTokens: big.NewInt(0),
    }
    r.Add(h)
    r.Details[hackA] = &eth.DetailInfo{Hackathon: h}
    r.ByOrganizer[org] = []common.Address{hackA}

    now := func() time.Time { return time.Unix(150, 0) }
    repo := cache.NewRepository(mock.NewMockCache(), time.Minute, now)
    svc := hackathons.New(r, repo, view.NewAssembler(nil, nil), factory, chainID, nil)
    svc.Now = now
    t.Cleanup(svc.Wait)

    tokens, err := metadata.NewResolver(nil, nil, 8, nil)
    if err != nil { t.Fatal(err) }
    tokens.Seed([]models.TokenMetadata{{ChainID: chainID, TokenAddress: usdc.Hex(), Symbol: "USDC", Decimals: 6}})

    api := &Handler{Pages: svc, Tokens: tokens, ChainID: chainID}
    ts := httptest.NewServer(api.Handler())
    t.Cleanup(ts.Close)
    return ts, r
}

func get(t *testing.T, ts *httptest.Server, path string, out interface{}) *http.Response {
    t.Helper()
    resp, err := http.Get(ts.URL + path)
    if err != nil { t.Fatalf("GET %s: %v", path, err) }
    defer resp.Body.Close()
    if out != nil {
        if err := json.NewDecoder(resp.Body).Decode(out); err != nil { t.Fatalf("decode %s: %v", path, err) }
    }
    return resp
}

type pageBody struct {
    Data      models.HackathonPage `json:"data"`
    FromCache bool                 `json:"from_cache"`
    Stale     bool                 `json:"stale"`
    Error     string               `json:"error"`
}

func TestHealth(t *testing.T) {
    ts, _ := newServer(t)
    if resp := get(t, ts, "/health", nil); resp.StatusCode != http.StatusOK {
        t.Fatalf("status %d", resp.StatusCode)
    }
}

func TestExploreListing(t *testing.T) {
    ts, _ := newServer(t)
    var body pageBody
    resp := get(t, ts, "/hackathons?page=1", &body)
    if resp.StatusCode != http.StatusOK { t.Fatalf("status %d", resp.StatusCode) }
    if len(body.Data.Items) != 1 || body.Data.Items[0].Name != "Alpha" || body.Data.Items[0].Status != models.StatusAccepting {
        t.Fatalf("body: %+v", body)
    }
    if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
        t.Fatalf("request id: %q", resp.Header.Get(RequestIDHeader))
    }
}

func TestRequestIDIsEchoed(t *testing.T) {
    ts, _ := newServer(t)
    id := uuid.NewString()
    req, _ := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
    req.Header.Set(RequestIDHeader, id)
    resp, err := http.DefaultClient.Do(req)
    if err != nil { t.Fatal(err) }
    resp.Body.Close()
    if resp.Header.Get(RequestIDHeader) != id { t.Fatalf("got %q", resp.Header.Get(RequestIDHeader)) }
}

func TestBadInputIs400(t *testing.T) {
    ts, _ := newServer(t)
    for _, path := range []string{
        "/hackathons?status=bogus",
        "/hackathons/0x123",
        "/users/0x1/hackathons",
        "/users/" + org.Hex() + "/hackathons?tab=bogus",
        "/tokens/nope/metadata",
    } {
        var body map[string]string
        if resp := get(t, ts, path, &body); resp.StatusCode != http.StatusBadRequest || body["error"] == "" {
            t.Errorf("%s: status %d body %v", path, resp.StatusCode, body)
        }
    }
}

func TestChainFailureWithoutCacheIs502(t *testing.T) {
    ts, r := newServer(t)
    r.SetErr(errors.New("rpc down"))
    var body map[string]string
    resp := get(t, ts, "/hackathons/"+hackA.Hex()+"?viewer="+org.Hex(), &body)
    if resp.StatusCode != http.StatusBadGateway { t.Fatalf("status %d", resp.StatusCode) }
    retry, err := url.Parse(body["retry"])
    if err != nil || retry.Query().Get("refresh") != "1" || retry.Query().Get("viewer") != org.Hex() {
        t.Fatalf("retry: %q", body["retry"])
    }
    if !strings.Contains(body["error"], "rpc down") { t.Fatalf("error: %q", body["error"]) }
}

func TestChainFailureWithCacheIsStale(t *testing.T) {
    ts, r := newServer(t)
    get(t, ts, "/organizers/"+org.Hex()+"/hackathons", nil)
    r.SetErr(errors.New("rpc down"))

    var body pageBody
    resp := get(t, ts, "/organizers/"+org.Hex()+"/hackathons", &body)
    if resp.StatusCode != http.StatusOK { t.Fatalf("status %d", resp.StatusCode) }
    if !body.Stale || !body.FromCache || body.Error == "" || len(body.Data.Items) != 1 {
        t.Fatalf("body: %+v", body)
    }
}

func TestPreferCache(t *testing.T) {
    ts, _ := newServer(t)
    get(t, ts, "/hackathons", nil)
    var body pageBody
    get(t, ts, "/hackathons?prefer_cache=1", &body)
    if !body.FromCache || len(body.Data.Items) != 1 { t.Fatalf("body: %+v", body) }
}

func TestDetailAndTabs(t *testing.T) {
    ts, r := newServer(t)
    var detail struct {
        Data models.HackathonDetail `json:"data"`
    }
    if resp := get(t, ts, "/hackathons/"+hackA.Hex()+"?viewer="+org.Hex(), &detail); resp.StatusCode != http.StatusOK {
        t.Fatalf("detail status %d", resp.StatusCode)
    }
    if detail.Data.ViewerRole != models.RoleOrganizer { t.Fatalf("role: %q", detail.Data.ViewerRole) }

    var body pageBody
    get(t, ts, "/users/"+org.Hex()+"/hackathons?tab=organizing", &body)
    if body.Data.Total != 1 { t.Fatalf("organizing tab: %+v", body.Data) }
    if r.Calls("OrganizerHackathons") != 1 { t.Fatalf("tab not read from the organizer list") }
}

func TestTokenMetadata(t *testing.T) {
    ts, _ := newServer(t)
    var md models.TokenMetadata
    resp := get(t, ts, "/tokens/"+usdc.Hex()+"/metadata", &md)
    if resp.StatusCode != http.StatusOK || md.Symbol != "USDC" || md.Decimals != 6 {
        t.Fatalf("status %d md %+v", resp.StatusCode, md)
    }
    other := common.HexToAddress("0x00000000000000000000000000000000000000e9")
    if resp := get(t, ts, "/tokens/"+other.Hex()+"/metadata", nil); resp.StatusCode != http.StatusNotFound {
        t.Fatalf("unknown token: %d", resp.StatusCode)
    }
}

func TestTokenMetadataChainFailureIs502(t *testing.T) {
    node := mock.NewChainNode(chainID)
    down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        http.Error(w, "unavailable", http.StatusServiceUnavailable)
    }))
    t.Cleanup(down.Close)
    client, err := eth.Dial(context.Background(), down.URL)
    if err != nil { t.Fatal(err) }
    t.Cleanup(client.Close)
    tokens, _ := metadata.NewResolver(eth.NewERC20Client(client), nil, 8, nil)
    ts := httptest.NewServer((&Handler{Tokens: tokens, ChainID: chainID}).Handler())
    t.Cleanup(ts.Close)

    var body map[string]string
    path := "/tokens/" + usdc.Hex() + "/metadata"
    resp := get(t, ts, path, &body)
    if resp.StatusCode != http.StatusBadGateway || body["retry"] != path {
        t.Fatalf("transport failure: %d %v", resp.StatusCode, body)
    }

    // the node answers, but nothing is deployed there
    live := httptest.NewServer(node)
    t.Cleanup(live.Close)
    client2, err := eth.Dial(context.Background(), live.URL)
    if err != nil { t.Fatal(err) }
    t.Cleanup(client2.Close)
    tokens2, _ := metadata.NewResolver(eth.NewERC20Client(client2), nil, 8, nil)
    ts2 := httptest.NewServer((&Handler{Tokens: tokens2, ChainID: chainID}).Handler())
    t.Cleanup(ts2.Close)
    if resp := get(t, ts2, path, nil); resp.StatusCode != http.StatusNotFound {
        t.Fatalf("no code at address: %d", resp.StatusCode)
    }
}

func TestRoutingMisses(t *testing.T) {
    ts, _ := newServer(t)
    if resp := get(t, ts, "/users/"+org.Hex(), nil); resp.StatusCode != http.StatusNotFound {
        t.Fatalf("status %d", resp.StatusCode)
    }
    resp, err := http.Post(ts.URL+"/hackathons", "application/json", nil)
    if err != nil { t.Fatal(err) }
    resp.Body.Close()
    if resp.StatusCode != http.StatusMethodNotAllowed { t.Fatalf("post status %d", resp.StatusCode) }
}
