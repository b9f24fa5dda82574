package main

import (
    "fmt"
    "os"

    "gopkg.in/urfave/cli.v1"

    "github.com/StabilityNexus/hackhub-explorer/internal/config"
)

func main() {
    _ = config.LoadDotenv()

    app := cli.NewApp()
    app.Name = "hackhub"
    app.Usage = "browse hackathons and act on them from the terminal"
    app.Flags = []cli.Flag{
        cli.StringFlag{Name: "rpc", Usage: "JSON-RPC endpoint (RPC_URL)"},
        cli.StringFlag{Name: "factory", Usage: "factory contract address (FACTORY_ADDRESS)"},
        cli.Uint64Flag{Name: "chain-id", Usage: "expected chain id (CHAIN_ID)"},
        cli.BoolFlag{Name: "json", Usage: "print JSON instead of tables"},
    }
    app.Commands = []cli.Command{
        {
            Name:      "list",
            Usage:     "list hackathons, newest first",
            ArgsUsage: " ",
            Flags: []cli.Flag{
                cli.IntFlag{Name: "page", Value: 1},
                cli.IntFlag{Name: "page-size"},
                cli.StringFlag{Name: "q", Usage: "name contains"},
                cli.StringFlag{Name: "status", Usage: "upcoming | accepting-submissions | judging-submissions | concluded"},
                refreshFlag,
            },
            Action: listCmd,
        },
        {
            Name:      "show",
            Usage:     "show one hackathon; prints the cached copy first, then the chain state",
            ArgsUsage: "<hackathon>",
            Flags:     []cli.Flag{cli.StringFlag{Name: "viewer", Usage: "address to compute the viewer role for"}, refreshFlag},
            Action:    showCmd,
        },
        {
            Name:      "mine",
            Usage:     "hackathons of an account",
            ArgsUsage: "<account>",
            Flags: []cli.Flag{
                cli.StringFlag{Name: "tab", Value: "participating", Usage: "participating | judging | organizing"},
                cli.IntFlag{Name: "page", Value: 1},
                refreshFlag,
            },
            Action: mineCmd,
        },
        {
            Name:      "organizer",
            Usage:     "hackathons created by an organizer",
            ArgsUsage: "<organizer>",
            Flags:     []cli.Flag{cli.IntFlag{Name: "page", Value: 1}, refreshFlag},
            Action:    organizerCmd,
        },
        {
            Name:      "vote",
            Usage:     "spend judge tokens on a project (PRIVATE_KEY)",
            ArgsUsage: "<hackathon> <project-id> <amount>",
            Action:    voteCmd,
        },
        {
            Name:      "claim",
            Usage:     "claim a project's prize (PRIVATE_KEY)",
            ArgsUsage: "<hackathon> <project-id>",
            Action:    claimCmd,
        },
        {
            Name:      "conclude",
            Usage:     "conclude a hackathon as its organizer (PRIVATE_KEY)",
            ArgsUsage: "<hackathon>",
            Action:    concludeCmd,
        },
        {
            Name:      "submit",
            Usage:     "submit a project (PRIVATE_KEY)",
            ArgsUsage: "<hackathon> <source-url> <docs-url> [prize-recipient]",
            Action:    submitCmd,
        },
    }
    if err := app.Run(os.Args); err != nil {
        fmt.Fprintln(os.Stderr, "error:", err)
        os.Exit(1)
    }
}

var refreshFlag = cli.BoolFlag{Name: "refresh", Usage: "skip the cache and wait for the chain"}

func loadConfig(c *cli.Context) config.CLI {
    cfg := config.LoadCLI()
    if v := c.GlobalString("rpc"); v != "" { cfg.RPCURL = v }
    if v := c.GlobalString("factory"); v != "" { cfg.Factory = v }
    if c.GlobalIsSet("chain-id") { cfg.ChainID = c.GlobalUint64("chain-id") }
    if cfg.LogLevel == "info" { cfg.LogLevel = "warn" }
    return cfg
}
