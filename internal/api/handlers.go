package api

import (
    "context"
    "encoding/json"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/ethereum/go-ethereum/common"
    "github.com/pkg/errors"
    "go.uber.org/zap"

    "github.com/StabilityNexus/hackhub-explorer/internal/eth"
    "github.com/StabilityNexus/hackhub-explorer/internal/hackathons"
    "github.com/StabilityNexus/hackhub-explorer/internal/metadata"
    "github.com/StabilityNexus/hackhub-explorer/internal/models"
    "github.com/StabilityNexus/hackhub-explorer/internal/store"
)

// Pages is what the handlers need from the hackathons service.
type Pages interface {
    Explore(ctx context.Context, q hackathons.ExploreQuery, opts hackathons.Options) (hackathons.Result[models.HackathonPage], error)
    MyHackathons(ctx context.Context, user string, tab hackathons.Tab, page int, opts hackathons.Options) (hackathons.Result[models.HackathonPage], error)
    OrganizerHackathons(ctx context.Context, organizer string, page int, opts hackathons.Options) (hackathons.Result[models.HackathonPage], error)
    Hackathon(ctx context.Context, hackathon, viewer string, opts hackathons.Options) (hackathons.Result[models.HackathonDetail], error)
}

type TokenLookup interface {
    Lookup(ctx context.Context, chainID uint64, token common.Address) (models.TokenMetadata, error)
}

type Handler struct {
    Pages   Pages
    Tokens  TokenLookup
    ChainID uint64
    Log     *zap.Logger
}

func (h *Handler) Routes(mux *http.ServeMux) {
    mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
    mux.HandleFunc("/hackathons", h.get(h.Explore))
    mux.HandleFunc("/hackathons/", h.get(h.hackathonSubroutes))
    mux.HandleFunc("/users/", h.get(h.userSubroutes))
    mux.HandleFunc("/organizers/", h.get(h.organizerSubroutes))
    mux.HandleFunc("/tokens/", h.get(h.tokenSubroutes))
}

// Handler returns the routes wrapped with request ids.
func (h *Handler) Handler() http.Handler {
    mux := http.NewServeMux()
    h.Routes(mux)
    return WithRequestID(mux, h.Log)
}

func (h *Handler) get(fn http.HandlerFunc) http.HandlerFunc {
    return func(w http.ResponseWriter, r *http.Request) {
        if r.Method != http.MethodGet {
            w.Header().Set("Allow", http.MethodGet)
            httpError(w, r, http.StatusMethodNotAllowed, errors.New("method not allowed"))
            return
        }
        fn(w, r)
    }
}

func parts(r *http.Request) []string {
    return strings.Split(strings.Trim(r.URL.Path, "/"), "/")
}

func options(r *http.Request) hackathons.Options {
    q := r.URL.Query()
    return hackathons.Options{Force: flag(q.Get("refresh")), PreferCache: flag(q.Get("prefer_cache"))}
}

func flag(v string) bool { return v == "1" || v == "true" }

func parseInt(r *http.Request, name string, def int) int {
    v := r.URL.Query().Get(name)
    if v == "" { return def }
    n, err := strconv.Atoi(v)
    if err != nil { return def }
    return n
}

// GET /hackathons
func (h *Handler) Explore(w http.ResponseWriter, r *http.Request) {
    q := r.URL.Query()
    res, err := h.Pages.Explore(r.Context(), hackathons.ExploreQuery{
        Page:     parseInt(r, "page", 1),
        PageSize: parseInt(r, "page_size", 0),
        Search:   q.Get("q"),
        Status:   models.Status(q.Get("status")),
    }, options(r))
    respond(h, w, r, res, err)
}

func (h *Handler) hackathonSubroutes(w http.ResponseWriter, r *http.Request) {
    // Expect: /hackathons/{address}
    p := parts(r)
    if len(p) == 2 && p[0] == "hackathons" {
        res, err := h.Pages.Hackathon(r.Context(), p[1], r.URL.Query().Get("viewer"), options(r))
        respond(h, w, r, res, err)
        return
    }
    http.NotFound(w, r)
}

func (h *Handler) userSubroutes(w http.ResponseWriter, r *http.Request) {
    // Expect: /users/{address}/hackathons
    p := parts(r)
    if len(p) == 3 && p[0] == "users" && p[2] == "hackathons" {
        tab := r.URL.Query().Get("tab")
        if tab == "" { tab = string(hackathons.TabParticipating) }
        res, err := h.Pages.MyHackathons(r.Context(), p[1], hackathons.Tab(tab), parseInt(r, "page", 1), options(r))
        respond(h, w, r, res, err)
        return
    }
    http.NotFound(w, r)
}

func (h *Handler) organizerSubroutes(w http.ResponseWriter, r *http.Request) {
    // Expect: /organizers/{address}/hackathons
    p := parts(r)
    if len(p) == 3 && p[0] == "organizers" && p[2] == "hackathons" {
        res, err := h.Pages.OrganizerHackathons(r.Context(), p[1], parseInt(r, "page", 1), options(r))
        respond(h, w, r, res, err)
        return
    }
    http.NotFound(w, r)
}

func (h *Handler) tokenSubroutes(w http.ResponseWriter, r *http.Request) {
    // Expect: /tokens/{address}/metadata
    p := parts(r)
    if len(p) == 3 && p[0] == "tokens" && p[2] == "metadata" {
        h.TokenMetadata(w, r, p[1])
        return
    }
    http.NotFound(w, r)
}

// GET /tokens/{token}/metadata
func (h *Handler) TokenMetadata(w http.ResponseWriter, r *http.Request, token string) {
    addr, err := eth.ParseAddress(token)
    if err != nil {
        httpError(w, r, http.StatusBadRequest, err)
        return
    }
    if h.Tokens == nil {
        httpError(w, r, http.StatusNotFound, errors.New("token metadata unavailable"))
        return
    }
    md, err := h.Tokens.Lookup(r.Context(), h.ChainID, addr)
    switch {
    case errors.Is(err, metadata.ErrNotToken), errors.Is(err, store.ErrNotFound):
        httpError(w, r, http.StatusNotFound, err)
        return
    case err != nil:
        logger(r, h.Log).Warn("token lookup failed", zap.String("token", token), zap.Error(err))
        writeJSON(w, r, http.StatusBadGateway, map[string]string{"error": err.Error(), "retry": r.URL.RequestURI()})
        return
    }
    writeJSON(w, r, http.StatusOK, md)
}

type envelope struct {
    Data      interface{} `json:"data"`
    FromCache bool        `json:"from_cache"`
    CachedAt  *time.Time  `json:"cached_at,omitempty"`
    Stale     bool        `json:"stale,omitempty"`
    Error     string      `json:"error,omitempty"`
}

func respond[T any](h *Handler, w http.ResponseWriter, r *http.Request, res hackathons.Result[T], err error) {
    if err != nil {
        if errors.Is(err, hackathons.ErrInvalidInput) {
            httpError(w, r, http.StatusBadRequest, err)
            return
        }
        logger(r, h.Log).Warn("page load failed", zap.String("path", r.URL.Path), zap.Error(err))
        writeJSON(w, r, http.StatusBadGateway, map[string]string{"error": err.Error(), "retry": retryURL(r)})
        return
    }
    env := envelope{Data: res.Data, FromCache: res.FromCache, Stale: res.Stale}
    if !res.CachedAt.IsZero() {
        at := res.CachedAt.UTC()
        env.CachedAt = &at
    }
    if res.Err != nil { env.Error = res.Err.Error() }
    writeJSON(w, r, http.StatusOK, env)
}

// retryURL is the request URL with a forced refresh.
func retryURL(r *http.Request) string {
    u := *r.URL
    q := u.Query()
    q.Del("prefer_cache")
    q.Set("refresh", "1")
    u.RawQuery = q.Encode()
    return u.RequestURI()
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(code)
    if err := json.NewEncoder(w).Encode(v); err != nil {
        logger(r, nil).Error("writeJSON", zap.Error(err))
    }
}

func httpError(w http.ResponseWriter, r *http.Request, code int, err error) {
    writeJSON(w, r, code, map[string]string{"error": err.Error()})
}
