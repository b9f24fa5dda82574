package view

import (
    "fmt"
    "math/big"
    "strings"
    "time"

    "github.com/StabilityNexus/hackhub-explorer/internal/models"
)

// DeriveStatus maps schedule and concluded flag to a lifecycle phase at now.
// The concluded flag wins over the schedule.
func DeriveStatus(start, end time.Time, concluded bool, now time.Time) models.Status {
    switch {
    case concluded:
        return models.StatusConcluded
    case now.Before(start):
        return models.StatusUpcoming
    case now.Before(end):
        return models.StatusAccepting
    default:
        return models.StatusJudging
    }
}

var one = big.NewInt(1)

// votesDivisor treats zero total votes as 1 so that nothing divides by zero.
func votesDivisor(total *big.Int) *big.Int {
    if total == nil || total.Sign() <= 0 { return one }
    return total
}

func nz(v *big.Int) *big.Int {
    if v == nil { return new(big.Int) }
    return v
}

// EstimatePayout is pool * projectVotes / totalVotes, floored.
func EstimatePayout(pool, projectVotes, totalVotes *big.Int) *big.Int {
    out := new(big.Int).Mul(nz(pool), nz(projectVotes))
    return out.Quo(out, votesDivisor(totalVotes))
}

// SharePercent renders projectVotes/totalVotes as a percentage with two
// decimals, truncated.
func SharePercent(projectVotes, totalVotes *big.Int) string {
    bp := new(big.Int).Mul(nz(projectVotes), big.NewInt(10000))
    bp.Quo(bp, votesDivisor(totalVotes))
    whole, frac := new(big.Int).QuoRem(bp, big.NewInt(100), new(big.Int))
    return fmt.Sprintf("%s.%02d", whole.String(), frac.Int64())
}

// YYYYMMDD encodes the UTC calendar date of t.
func YYYYMMDD(t time.Time) uint32 {
    t = t.UTC()
    return uint32(t.Year()*10000 + int(t.Month())*100 + t.Day())
}

// ShortAddress renders 0x1234…abcd.
func ShortAddress(addr string) string {
    if len(addr) < 10 { return addr }
    return addr[:6] + "…" + addr[len(addr)-4:]
}

// Restatus recomputes the status of listing items for now. Cached items
// carry the status of the moment they were fetched.
func Restatus(items []models.HackathonView, now time.Time) []models.HackathonView {
    out := make([]models.HackathonView, len(items))
    for i, h := range items {
        h.Status = DeriveStatus(time.Unix(h.StartTime, 0), time.Unix(h.EndTime, 0), h.Concluded, now)
        out[i] = h
    }
    return out
}

// Personalize sets the viewer fields of an assembled detail. An empty viewer
// clears them.
func Personalize(d models.HackathonDetail, viewer string, now time.Time) models.HackathonDetail {
    d.Hackathon = Restatus([]models.HackathonView{d.Hackathon}, now)[0]
    viewer = strings.ToLower(viewer)
    d.Viewer, d.ViewerRole = viewer, ""
    if viewer == "" || viewer == zeroAddress { return d }
    d.ViewerRole = models.RoleVisitor
    switch {
    case d.Hackathon.Organizer == viewer:
        d.ViewerRole = models.RoleOrganizer
    case containsJudge(d.Judges, viewer):
        d.ViewerRole = models.RoleJudge
    case containsSubmitter(d.Projects, viewer):
        d.ViewerRole = models.RoleParticipant
    }
    return d
}

const zeroAddress = "0x0000000000000000000000000000000000000000"

func containsJudge(js []models.JudgeView, addr string) bool {
    for _, j := range js {
        if j.Address == addr { return true }
    }
    return false
}

func containsSubmitter(ps []models.ProjectView, addr string) bool {
    for _, p := range ps {
        if p.Submitter == addr { return true }
    }
    return false
}
