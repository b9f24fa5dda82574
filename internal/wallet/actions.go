package wallet

import (
    "context"
    "math/big"

    "github.com/ethereum/go-ethereum/common"

    "github.com/StabilityNexus/hackhub-explorer/internal/eth"
)

func Vote(ctx context.Context, w Wallet, hackathon common.Address, projectID uint64, amount *big.Int) (common.Hash, error) {
    return w.Send(ctx, hackathon, eth.HackathonABI, "vote", nil, new(big.Int).SetUint64(projectID), amount)
}

func ClaimPrize(ctx context.Context, w Wallet, hackathon common.Address, projectID uint64) (common.Hash, error) {
    return w.Send(ctx, hackathon, eth.HackathonABI, "claimPrize", nil, new(big.Int).SetUint64(projectID))
}

func Conclude(ctx context.Context, w Wallet, hackathon common.Address) (common.Hash, error) {
    return w.Send(ctx, hackathon, eth.HackathonABI, "concludeHackathon", nil)
}

func SubmitProject(ctx context.Context, w Wallet, hackathon common.Address, source, docs string, recipient common.Address) (common.Hash, error) {
    return w.Send(ctx, hackathon, eth.HackathonABI, "submitProject", nil, source, docs, recipient)
}
