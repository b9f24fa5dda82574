package eth

import (
    "math/big"

    "github.com/ethereum/go-ethereum/common"
)

// HackathonInfo is the header tuple of one hackathon contract.
type HackathonInfo struct {
    Address      common.Address
    Name         string
    ImageURL     string
    StartTime    *big.Int
    EndTime      *big.Int
    Concluded    bool
    Organizer    common.Address
    JudgeCount   *big.Int
    ProjectCount *big.Int
    TotalTokens  *big.Int
}

type JudgeInfo struct {
    Address   common.Address
    Allocated *big.Int
    Remaining *big.Int
}

type ProjectInfo struct {
    ID             uint64
    Submitter      common.Address
    Recipient      common.Address
    SourceCode     string
    Docs           string
    TokensReceived *big.Int
    PrizeClaimed   bool
}

type TokenPool struct {
    Token      common.Address
    Total      *big.Int
    MinDeposit *big.Int
}

type SponsorContribution struct {
    Token  common.Address
    Amount *big.Int
}

type SponsorInfo struct {
    Address       common.Address
    Name          string
    Image         string
    Contributions []SponsorContribution
}

// DetailInfo is everything the detail page needs from one hackathon.
type DetailInfo struct {
    Hackathon HackathonInfo
    Judges    []JudgeInfo
    Projects  []ProjectInfo
    Tokens    []TokenPool
    Sponsors  []SponsorInfo
    // SponsorsProbed is set when the contract has no sponsor enumerator and
    // sponsors were discovered by probing candidate addresses.
    SponsorsProbed bool
}
