package models

import (
    "time"

    "github.com/StabilityNexus/hackhub-explorer/internal/units"
)

// Status is the lifecycle phase of a hackathon relative to wall-clock time.
type Status string

const (
    StatusUpcoming  Status = "upcoming"
    StatusAccepting Status = "accepting-submissions"
    StatusJudging   Status = "judging-submissions"
    StatusConcluded Status = "concluded"
)

func (s Status) Valid() bool {
    switch s {
    case StatusUpcoming, StatusAccepting, StatusJudging, StatusConcluded:
        return true
    }
    return false
}

// HackathonView is the header of a hackathon as shown in listings.
type HackathonView struct {
    Address      string    `json:"address"`
    ChainID      uint64    `json:"chain_id"`
    Name         string    `json:"name"`
    ImageURL     string    `json:"image_url"`
    StartTime    int64     `json:"start_time"`
    EndTime      int64     `json:"end_time"`
    // YYYYMMDD, kept alongside the unix times
    StartDate    uint32    `json:"start_date"`
    EndDate      uint32    `json:"end_date"`
    Concluded    bool      `json:"concluded"`
    Organizer    string    `json:"organizer"`
    JudgeCount   uint64    `json:"judge_count"`
    ProjectCount uint64    `json:"project_count"`
    TotalTokens  units.Int `json:"total_tokens"`
    Status       Status    `json:"status"`
}

type JudgeView struct {
    Address         string    `json:"address"`
    Name            string    `json:"name"`
    TokensAllocated units.Int `json:"tokens_allocated"`
    TokensRemaining units.Int `json:"tokens_remaining"`
}

// Payout is a project's estimated share of one funding token's pool.
type Payout struct {
    Token     string    `json:"token"`
    Symbol    string    `json:"symbol"`
    Amount    units.Int `json:"amount"`
    Formatted string    `json:"formatted"`
}

type ProjectView struct {
    // ID is the on-chain index; not stable across contract upgrades.
    ID               uint64    `json:"id"`
    Submitter        string    `json:"submitter"`
    Recipient        string    `json:"recipient"`
    SourceCode       string    `json:"source_code"`
    DocsURL          string    `json:"docs_url"`
    TokensReceived   units.Int `json:"tokens_received"`
    SharePercent     string    `json:"share_percent"`
    EstimatedPayouts []Payout  `json:"estimated_payouts"`
    PrizeClaimed     bool      `json:"prize_claimed"`
}

type Contribution struct {
    Token     string    `json:"token"`
    Symbol    string    `json:"symbol"`
    Amount    units.Int `json:"amount"`
    Formatted string    `json:"formatted"`
}

type SponsorView struct {
    Address       string         `json:"address"`
    Name          string         `json:"name"`
    ImageURL      string         `json:"image_url"`
    Contributions []Contribution `json:"contributions"`
}

// TokenInfo describes one funding token of a hackathon. The zero address
// stands for the chain's native currency.
type TokenInfo struct {
    Address    string    `json:"address"`
    Symbol     string    `json:"symbol"`
    Decimals   uint8     `json:"decimals"`
    IsNative   bool      `json:"is_native"`
    PoolTotal  units.Int `json:"pool_total"`
    Formatted  string    `json:"formatted"`
    MinDeposit units.Int `json:"min_deposit"`
}

type ViewerRole string

const (
    RoleOrganizer   ViewerRole = "organizer"
    RoleJudge       ViewerRole = "judge"
    RoleParticipant ViewerRole = "participant"
    RoleVisitor     ViewerRole = "visitor"
)

// HackathonDetail is the single-hackathon payload.
type HackathonDetail struct {
    Hackathon      HackathonView `json:"hackathon"`
    Judges         []JudgeView   `json:"judges"`
    Projects       []ProjectView `json:"projects"`
    Sponsors       []SponsorView `json:"sponsors"`
    Tokens         []TokenInfo   `json:"tokens"`
    TotalVotesCast units.Int     `json:"total_votes_cast"`
    Viewer         string        `json:"viewer,omitempty"`
    ViewerRole     ViewerRole    `json:"viewer_role"`
}

// HackathonPage is one page of a listing.
type HackathonPage struct {
    Items    []HackathonView `json:"items"`
    Page     int             `json:"page"`
    PageSize int             `json:"page_size"`
    Total    int             `json:"total"`
}

// Entry wraps any cached payload with the time it was written and the chain
// it was read from.
type Entry[T any] struct {
    Data      T      `json:"data"`
    Timestamp int64  `json:"timestamp"`
    ChainID   uint64 `json:"chainId"`
    Key       string `json:"key"`
}

func (e Entry[T]) WrittenAt() time.Time { return time.UnixMilli(e.Timestamp) }

// TokenMetadata represents ERC20 static-ish fields.
type TokenMetadata struct {
    ChainID      uint64    `json:"chain_id"`
    TokenAddress string    `json:"token_address"`
    Name         string    `json:"name"`
    Symbol       string    `json:"symbol"`
    Decimals     int32     `json:"decimals"`
    UpdatedAt    time.Time `json:"updated_at"`
}
