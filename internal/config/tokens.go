package config

import (
    "os"
    "strings"

    "github.com/pkg/errors"
    "gopkg.in/yaml.v3"

    "github.com/StabilityNexus/hackhub-explorer/internal/models"
)

// tokenFile is the layout of TOKENS_FILE:
//
//  tokens:
//    - chain_id: 534351
//      address: "0x..."
//      symbol: USDC
//      decimals: 6
type tokenFile struct {
    Tokens []struct {
        ChainID  uint64 `yaml:"chain_id"`
        Address  string `yaml:"address"`
        Name     string `yaml:"name"`
        Symbol   string `yaml:"symbol"`
        Decimals *int32 `yaml:"decimals"`
    } `yaml:"tokens"`
}

// LoadTokens reads the known-token registry. An empty path yields no tokens.
func LoadTokens(path string) ([]models.TokenMetadata, error) {
    if path == "" { return nil, nil }
    raw, err := os.ReadFile(path)
    if err != nil { return nil, errors.Wrap(err, "read token registry") }
    var f tokenFile
    if err := yaml.Unmarshal(raw, &f); err != nil {
        return nil, errors.Wrapf(err, "parse %s", path)
    }
    out := make([]models.TokenMetadata, 0, len(f.Tokens))
    for i, t := range f.Tokens {
        if t.ChainID == 0 || t.Address == "" || t.Decimals == nil {
            return nil, errors.Errorf("%s: token %d needs chain_id, address and decimals", path, i)
        }
        if *t.Decimals < 0 || *t.Decimals > 255 {
            return nil, errors.Errorf("%s: token %s: decimals %d out of range", path, t.Address, *t.Decimals)
        }
        out = append(out, models.TokenMetadata{
            ChainID: t.ChainID, TokenAddress: strings.ToLower(t.Address),
            Name: t.Name, Symbol: t.Symbol, Decimals: *t.Decimals,
        })
    }
    return out, nil
}
