package metadata

import (
    "context"
    "strconv"
    "strings"

    "github.com/ethereum/go-ethereum/common"
    lru "github.com/hashicorp/golang-lru"
    "github.com/pkg/errors"
    "go.uber.org/zap"

    "github.com/StabilityNexus/hackhub-explorer/internal/eth"
    "github.com/StabilityNexus/hackhub-explorer/internal/models"
    "github.com/StabilityNexus/hackhub-explorer/internal/store"
)

// ErrNotToken means the chain answered and the address has no readable
// decimals, either because nothing is deployed there or because the contract
// is not an ERC20.
var ErrNotToken = errors.New("not an ERC20 token")

// ChainTokens reads ERC20 metadata from the chain.
type ChainTokens interface {
    Metadata(ctx context.Context, token common.Address) (eth.TokenMeta, error)
    IsContract(ctx context.Context, token common.Address) (bool, error)
}

// readToken reads token metadata from the chain. An address without code
// comes back as a record with Decimals -1 and ok set.
func readToken(ctx context.Context, chain ChainTokens, chainID uint64, token common.Address) (md models.TokenMetadata, ok bool, err error) {
    addr := strings.ToLower(token.Hex())
    m, err := chain.Metadata(ctx, token)
    if err != nil { return md, false, errors.Wrapf(err, "token %s", addr) }
    md = models.TokenMetadata{ChainID: chainID, TokenAddress: addr}
    if m.DecimalsErr != nil {
        deployed, cerr := chain.IsContract(ctx, token)
        if cerr != nil { return md, false, errors.Wrapf(cerr, "token %s code", addr) }
        if !deployed {
            md.Decimals = -1
            return md, true, nil
        }
        return md, false, errors.Wrapf(ErrNotToken, "token %s decimals: %v", addr, m.DecimalsErr)
    }
    md.Name, md.Symbol, md.Decimals = m.Name, m.Symbol, int32(m.Decimals)
    return md, true, nil
}

// Resolver looks token metadata up in memory, then Postgres, then the chain.
// Chain results are written back to both.
type Resolver struct {
    Chain ChainTokens
    Store store.Store
    Log   *zap.Logger

    mem *lru.Cache
}

func NewResolver(chain ChainTokens, st store.Store, size int, log *zap.Logger) (*Resolver, error) {
    if size <= 0 { size = 1024 }
    mem, err := lru.New(size)
    if err != nil { return nil, errors.Wrap(err, "token lru") }
    if log == nil { log = zap.NewNop() }
    return &Resolver{Chain: chain, Store: st, Log: log.Named("tokens"), mem: mem}, nil
}

func memKey(chainID uint64, token string) string {
    return strconv.FormatUint(chainID, 10) + "|" + strings.ToLower(token)
}

// Seed preloads known tokens, typically from the token registry file.
func (r *Resolver) Seed(tokens []models.TokenMetadata) {
    for _, t := range tokens {
        r.mem.Add(memKey(t.ChainID, t.TokenAddress), t)
    }
}

func usable(md models.TokenMetadata) bool { return md.Decimals >= 0 && md.Decimals <= 255 }

func (r *Resolver) known(md models.TokenMetadata) (models.TokenMetadata, error) {
    if usable(md) { return md, nil }
    return models.TokenMetadata{}, errors.Wrapf(ErrNotToken, "token %s: no contract code", md.TokenAddress)
}

// Lookup returns the full metadata record for token.
func (r *Resolver) Lookup(ctx context.Context, chainID uint64, token common.Address) (models.TokenMetadata, error) {
    addr := strings.ToLower(token.Hex())
    k := memKey(chainID, addr)
    if v, ok := r.mem.Get(k); ok { return r.known(v.(models.TokenMetadata)) }

    if r.Store != nil {
        md, err := r.Store.GetTokenMetadata(ctx, chainID, addr)
        switch {
        case err == nil:
            // rows with unknown decimals were written for addresses without code
            r.mem.Add(k, md)
            return r.known(md)
        case !errors.Is(err, store.ErrNotFound):
            r.Log.Debug("store lookup failed", zap.String("token", addr), zap.Error(err))
        }
    }

    if r.Chain == nil { return models.TokenMetadata{}, errors.Wrapf(store.ErrNotFound, "token %s", addr) }
    md, ok, err := readToken(ctx, r.Chain, chainID, token)
    if !ok { return models.TokenMetadata{}, err }
    r.mem.Add(k, md)
    if r.Store != nil {
        if err := r.Store.UpsertTokenMetadata(ctx, md); err != nil {
            r.Log.Debug("store write failed", zap.String("token", addr), zap.Error(err))
        }
    }
    return r.known(md)
}

// Token implements view.TokenResolver.
func (r *Resolver) Token(ctx context.Context, chainID uint64, token common.Address) (string, uint8, error) {
    md, err := r.Lookup(ctx, chainID, token)
    if err != nil { return "", 0, err }
    return md.Symbol, uint8(md.Decimals), nil
}
