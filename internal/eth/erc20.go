package eth

import (
    "context"
    "strings"

    "github.com/ethereum/go-ethereum/common"
)

type ERC20Client struct{ c *Client }

func NewERC20Client(c *Client) *ERC20Client { return &ERC20Client{c: c} }

// parseBytes32String decodes a fixed 32-byte string (bytes32), trimming
// null bytes. Some older tokens return name/symbol this way.
func parseBytes32String(data []byte) string {
    if len(data) < 32 { return "" }
    b := data[len(data)-32:]
    s := strings.Map(func(r rune) rune { if r == 0 { return -1 }; return r }, string(b))
    return strings.TrimSpace(s)
}

func stringOut(call *Call) (string, error) {
    s, err := outAt[string](call, 0)
    if err == nil && s != "" {
        return strings.TrimSpace(strings.ReplaceAll(s, "\x00", "")), nil
    }
    if len(call.Raw) == 32 {
        return parseBytes32String(call.Raw), nil
    }
    return "", err
}

// IsContract reports whether any code is deployed at token.
func (e *ERC20Client) IsContract(ctx context.Context, token common.Address) (bool, error) {
    code, err := e.c.CodeAt(ctx, token)
    if err != nil { return false, err }
    return len(code) > 0, nil
}

// TokenMeta is the result of Metadata. Fields that could not be read are
// left empty and reported through the matching error.
type TokenMeta struct {
    Name        string
    Symbol      string
    Decimals    uint8
    NameErr     error
    SymbolErr   error
    DecimalsErr error
}

// Metadata reads name, symbol and decimals in one batch.
func (e *ERC20Client) Metadata(ctx context.Context, token common.Address) (TokenMeta, error) {
    name := NewCall(token, ERC20ABI, "name")
    sym := NewCall(token, ERC20ABI, "symbol")
    dec := NewCall(token, ERC20ABI, "decimals")
    if err := e.c.BatchCall(ctx, []*Call{name, sym, dec}); err != nil {
        return TokenMeta{}, err
    }
    var m TokenMeta
    m.Name, m.NameErr = stringOut(name)
    m.Symbol, m.SymbolErr = stringOut(sym)
    m.Decimals, m.DecimalsErr = outAt[uint8](dec, 0)
    return m, nil
}
