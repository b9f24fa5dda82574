package eth

import (
    "bytes"
    "embed"

    "github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed abi/*.json
var abiFS embed.FS

var (
    FactoryABI   = mustABI("abi/factory.json")
    HackathonABI = mustABI("abi/hackathon.json")
    ERC20ABI     = mustABI("abi/erc20.json")
)

func mustABI(path string) *abi.ABI {
    b, err := abiFS.ReadFile(path)
    if err != nil { panic(err) }
    a, err := abi.JSON(bytes.NewReader(b))
    if err != nil { panic(path + ": " + err.Error()) }
    return &a
}
