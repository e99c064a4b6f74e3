package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/app"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
)

const defaultTimeout = time.Second * 60

var (
	configPath string
	timeout    time.Duration
)

func jsonOutput(w io.Writer, in any) error {
	j, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(j))
	return err
}

// withApp initializes the App for one command and closes it afterwards.
func withApp(c *cli.Context, fn func(ctx context.Context, a *app.App) error) error {
	a, err := app.NewApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(c.Context, timeout)
	defer cancel()
	return fn(ctx, a)
}

func newCLI() *cli.App {
	cliApp := cli.NewApp()
	cliApp.Name = "finance-cli"
	cliApp.Version = common.GetFullVersion()
	cliApp.Usage = "portfolio valuation charts, snapshots and fixtures"
	cliApp.EnableBashCompletion = true
	cliApp.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "path to finance.toml (defaults to FINANCE_CONFIG, then finance.toml beside the binary)",
			Destination: &configPath,
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Value:       defaultTimeout,
			Usage:       "the context timeout for each command",
			Destination: &timeout,
		},
	}
	cliApp.Commands = []*cli.Command{
		chartCommand,
		valueCommand,
		snapshotCommand,
		seedCommand,
	}
	return cliApp
}

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
