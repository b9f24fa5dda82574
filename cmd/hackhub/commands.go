package main

import (
    "context"
    "encoding/json"
    "fmt"
    "io"
    "os"
    "os/signal"
    "strconv"
    "syscall"
    "text/tabwriter"
    "time"

    "github.com/ethereum/go-ethereum/common"
    "github.com/pkg/errors"
    "go.uber.org/zap"
    "gopkg.in/urfave/cli.v1"

    "github.com/StabilityNexus/hackhub-explorer/internal/app"
    "github.com/StabilityNexus/hackhub-explorer/internal/config"
    "github.com/StabilityNexus/hackhub-explorer/internal/eth"
    "github.com/StabilityNexus/hackhub-explorer/internal/hackathons"
    "github.com/StabilityNexus/hackhub-explorer/internal/loader"
    "github.com/StabilityNexus/hackhub-explorer/internal/models"
    "github.com/StabilityNexus/hackhub-explorer/internal/units"
    "github.com/StabilityNexus/hackhub-explorer/internal/wallet"
)

var out io.Writer = os.Stdout

type session struct {
    ctx    context.Context
    cancel context.CancelFunc
    cfg    config.CLI
    app    *app.App
    json   bool
}

func open(c *cli.Context) (*session, error) {
    cfg := loadConfig(c)
    logger, err := cfg.Logger()
    if err != nil { return nil, err }
    ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    a, err := app.New(ctx, cfg.Common, logger)
    if err != nil {
        cancel()
        return nil, err
    }
    return &session{ctx: ctx, cancel: cancel, cfg: cfg, app: a, json: c.GlobalBool("json")}, nil
}

func (s *session) Close() {
    s.app.Service.Wait()
    s.app.Close()
    _ = s.app.Log.Sync()
    s.cancel()
}

func opts(c *cli.Context) hackathons.Options { return hackathons.Options{Force: c.Bool("refresh")} }

func printJSON(v interface{}) error {
    enc := json.NewEncoder(out)
    enc.SetIndent("", "  ")
    return enc.Encode(v)
}

func provenance(fromCache bool, cachedAt time.Time, stale bool, err error) string {
    switch {
    case stale:
        return fmt.Sprintf("stale copy from %s, chain read failed: %v", cachedAt.Format(time.RFC3339), err)
    case fromCache:
        return "cached " + time.Since(cachedAt).Round(time.Second).String() + " ago"
    }
    return "synced"
}

func (s *session) printPage(res hackathons.Result[models.HackathonPage]) error {
    if s.json { return printJSON(res.Data) }
    tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
    fmt.Fprintln(tw, "ADDRESS\tNAME\tSTATUS\tSTART\tEND\tPROJECTS")
    for _, h := range res.Data.Items {
        fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n", h.Address, h.Name, h.Status, h.StartDate, h.EndDate, h.ProjectCount)
    }
    if err := tw.Flush(); err != nil { return err }
    fmt.Fprintf(out, "page %d, %d of %d (%s)\n", res.Data.Page, len(res.Data.Items), res.Data.Total,
        provenance(res.FromCache, res.CachedAt, res.Stale, res.Err))
    return nil
}

func listCmd(c *cli.Context) error {
    s, err := open(c)
    if err != nil { return err }
    defer s.Close()
    res, err := s.app.Service.Explore(s.ctx, hackathons.ExploreQuery{
        Page: c.Int("page"), PageSize: c.Int("page-size"),
        Search: c.String("q"), Status: models.Status(c.String("status")),
    }, opts(c))
    if err != nil { return err }
    return s.printPage(res)
}

func mineCmd(c *cli.Context) error {
    if c.NArg() != 1 { return cli.ShowCommandHelp(c, "mine") }
    s, err := open(c)
    if err != nil { return err }
    defer s.Close()
    res, err := s.app.Service.MyHackathons(s.ctx, c.Args().First(), hackathons.Tab(c.String("tab")), c.Int("page"), opts(c))
    if err != nil { return err }
    return s.printPage(res)
}

func organizerCmd(c *cli.Context) error {
    if c.NArg() != 1 { return cli.ShowCommandHelp(c, "organizer") }
    s, err := open(c)
    if err != nil { return err }
    defer s.Close()
    res, err := s.app.Service.OrganizerHackathons(s.ctx, c.Args().First(), c.Int("page"), opts(c))
    if err != nil { return err }
    return s.printPage(res)
}

func showCmd(c *cli.Context) error {
    if c.NArg() != 1 { return cli.ShowCommandHelp(c, "show") }
    s, err := open(c)
    if err != nil { return err }
    defer s.Close()
    st, err := s.app.Service.WatchHackathon(s.ctx, c.Args().First(), c.String("viewer"), c.Bool("refresh"),
        func(st loader.State[models.HackathonDetail]) {
            switch {
            case st.Loading:
                fmt.Fprintln(os.Stderr, "loading…")
            case st.Syncing:
                fmt.Fprintln(os.Stderr, "syncing…")
            case st.FromCache && st.Err == nil:
                if !s.json { printDetail(st.Data, provenance(true, st.CachedAt, false, nil)) }
            }
        })
    if err != nil { return err }
    if !st.HasData { return st.Err }
    if s.json { return printJSON(st.Data) }
    printDetail(st.Data, provenance(st.FromCache, st.CachedAt, st.Err != nil, st.Err))
    return nil
}

func printDetail(d models.HackathonDetail, note string) {
    h := d.Hackathon
    fmt.Fprintf(out, "%s (%s) [%s]\n", h.Name, h.Address, note)
    fmt.Fprintf(out, "  status %s, %d to %d, organizer %s\n", h.Status, h.StartDate, h.EndDate, h.Organizer)
    if d.ViewerRole != "" { fmt.Fprintf(out, "  you are: %s\n", d.ViewerRole) }
    tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
    fmt.Fprintln(tw, "  TOKEN\tPOOL\tMIN DEPOSIT")
    for _, t := range d.Tokens {
        fmt.Fprintf(tw, "  %s\t%s\t%s\n", t.Symbol, t.Formatted, t.MinDeposit)
    }
    fmt.Fprintln(tw, "  PROJECT\tSUBMITTER\tVOTES\tSHARE\tCLAIMED")
    for _, p := range d.Projects {
        fmt.Fprintf(tw, "  #%d\t%s\t%s\t%s%%\t%v\n", p.ID, p.Submitter, p.TokensReceived, p.SharePercent, p.PrizeClaimed)
    }
    fmt.Fprintln(tw, "  JUDGE\tALLOCATED\tREMAINING")
    for _, j := range d.Judges {
        fmt.Fprintf(tw, "  %s\t%s\t%s\n", j.Name, j.TokensAllocated, j.TokensRemaining)
    }
    _ = tw.Flush()
    for _, sp := range d.Sponsors {
        fmt.Fprintf(out, "  sponsor %s (%s)\n", sp.Name, sp.Address)
    }
}

// openWrite opens a session with a signing wallet for the hackathon in the
// first argument.
func openWrite(c *cli.Context, args int) (*session, wallet.Wallet, common.Address, error) {
    if c.NArg() < args {
        return nil, nil, common.Address{}, errors.Errorf("expected %d arguments, got %d", args, c.NArg())
    }
    hack, err := eth.ParseAddress(c.Args().First())
    if err != nil { return nil, nil, common.Address{}, err }
    s, err := open(c)
    if err != nil { return nil, nil, common.Address{}, err }
    if s.cfg.PrivateKey == "" {
        s.Close()
        return nil, nil, common.Address{}, errors.New("PRIVATE_KEY is not set")
    }
    w, err := wallet.NewKeyWallet(s.ctx, s.app.Client, s.cfg.PrivateKey, s.app.Log)
    if err != nil {
        s.Close()
        return nil, nil, common.Address{}, err
    }
    if w.ChainID() != s.app.ChainID {
        s.Close()
        return nil, nil, common.Address{}, errors.Errorf("wallet is on chain %d, explorer on %d", w.ChainID(), s.app.ChainID)
    }
    return s, w, hack, nil
}

// finish waits for the receipt and drops the cached detail so the next read
// shows the new state.
func (s *session) finish(w wallet.Wallet, hack common.Address, hash common.Hash, err error) error {
    if err != nil { return err }
    fmt.Fprintf(out, "sent %s, waiting for receipt…\n", hash.Hex())
    r, err := w.WaitReceipt(s.ctx, hash, 2*time.Second)
    if ierr := s.app.Service.InvalidateHackathon(s.ctx, hack); ierr != nil {
        s.app.Log.Debug("invalidate failed", zap.Error(ierr))
    }
    if err != nil { return err }
    fmt.Fprintf(out, "mined in block %s, gas %d\n", r.BlockNumber, r.GasUsed)
    return nil
}

func projectID(c *cli.Context, i int) (uint64, error) {
    id, err := strconv.ParseUint(c.Args().Get(i), 10, 64)
    return id, errors.Wrapf(err, "project id %q", c.Args().Get(i))
}

func voteCmd(c *cli.Context) error {
    s, w, hack, err := openWrite(c, 3)
    if err != nil { return err }
    defer s.Close()
    id, err := projectID(c, 1)
    if err != nil { return err }
    amount, err := units.DecodeBig(c.Args().Get(2))
    if err != nil { return errors.Wrap(err, "amount") }
    hash, err := wallet.Vote(s.ctx, w, hack, id, amount)
    return s.finish(w, hack, hash, err)
}

func claimCmd(c *cli.Context) error {
    s, w, hack, err := openWrite(c, 2)
    if err != nil { return err }
    defer s.Close()
    id, err := projectID(c, 1)
    if err != nil { return err }
    hash, err := wallet.ClaimPrize(s.ctx, w, hack, id)
    return s.finish(w, hack, hash, err)
}

func concludeCmd(c *cli.Context) error {
    s, w, hack, err := openWrite(c, 1)
    if err != nil { return err }
    defer s.Close()
    hash, err := wallet.Conclude(s.ctx, w, hack)
    return s.finish(w, hack, hash, err)
}

func submitCmd(c *cli.Context) error {
    s, w, hack, err := openWrite(c, 3)
    if err != nil { return err }
    defer s.Close()
    recipient := w.Account()
    if c.NArg() > 3 {
        if recipient, err = eth.ParseAddress(c.Args().Get(3)); err != nil { return err }
    }
    hash, err := wallet.SubmitProject(s.ctx, w, hack, c.Args().Get(1), c.Args().Get(2), recipient)
    return s.finish(w, hack, hash, err)
}
