package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/app"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/interfaces"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/services/valuation"
)

var chartCommand = &cli.Command{
	Name:      "chart",
	Usage:     "print a portfolio's value series as JSON, or render it to PNG",
	ArgsUsage: "<portfolio>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "portfolio",
			Aliases: []string{"p"},
			Usage:   "portfolio id",
		},
		&cli.StringFlag{
			Name:  "range",
			Value: string(models.Range1M),
			Usage: "one of 1D, 1W, 1M, 3M, YTD, 1Y, ALL",
		},
		&cli.IntFlag{
			Name:  "hover",
			Value: -1,
			Usage: "inspect the point at this index",
		},
		&cli.BoolFlag{
			Name:  "no-benchmark",
			Usage: "omit the benchmark line",
		},
		&cli.StringFlag{
			Name:      "png",
			Usage:     "write a PNG chart to this path instead of printing JSON",
			TakesFile: true,
		},
		&cli.IntFlag{
			Name:  "width",
			Value: 900,
			Usage: "PNG width in pixels",
		},
		&cli.IntFlag{
			Name:  "height",
			Value: 400,
			Usage: "PNG height in pixels",
		},
	},
	Action: runChart,
}

// portfolioArg reads the portfolio id from --portfolio or the first argument.
func portfolioArg(c *cli.Context) (string, error) {
	if c.IsSet("portfolio") {
		return c.String("portfolio"), nil
	}
	if id := c.Args().First(); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("portfolio id is required")
}

func runChart(c *cli.Context) error {
	id, err := portfolioArg(c)
	if err != nil {
		return err
	}
	rng, err := models.ParseTimeRange(c.String("range"))
	if err != nil {
		return err
	}
	opts := interfaces.ChartOptions{Benchmark: !c.Bool("no-benchmark")}
	if c.Int("hover") >= 0 {
		idx := c.Int("hover")
		opts.HoverIndex = &idx
	}

	return withApp(c, func(ctx context.Context, a *app.App) error {
		series, err := a.ValuationService.GetChart(ctx, id, rng, opts)
		if err != nil {
			return err
		}
		out := c.String("png")
		if out == "" {
			return jsonOutput(c.App.Writer, series)
		}
		png, err := valuation.RenderChart(series, c.Int("width"), c.Int("height"))
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, png, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Fprintf(c.App.Writer, "wrote %s (%d points, %s)\n", out, len(series.Points), series.Summary.ChangeDisplay)
		return nil
	})
}

var valueCommand = &cli.Command{
	Name:      "value",
	Usage:     "price a portfolio from live data",
	ArgsUsage: "<portfolio>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "portfolio",
			Aliases: []string{"p"},
			Usage:   "portfolio id",
		},
	},
	Action: func(c *cli.Context) error {
		id, err := portfolioArg(c)
		if err != nil {
			return err
		}
		return withApp(c, func(ctx context.Context, a *app.App) error {
			v, err := a.ValuationService.GetCurrentValue(ctx, id)
			if err != nil {
				return err
			}
			return jsonOutput(c.App.Writer, v)
		})
	},
}

var snapshotCommand = &cli.Command{
	Name:  "snapshot",
	Usage: "record today's snapshot for one portfolio, or all with --all",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "portfolio",
			Aliases: []string{"p"},
			Usage:   "portfolio id",
		},
		&cli.BoolFlag{
			Name:  "all",
			Usage: "record every stored portfolio",
		},
	},
	Action: func(c *cli.Context) error {
		return withApp(c, func(ctx context.Context, a *app.App) error {
			if c.Bool("all") {
				recorded, skipped, failed := a.RecordSnapshots(ctx)
				fmt.Fprintf(c.App.Writer, "recorded %d, skipped %d, failed %d\n", recorded, skipped, failed)
				if failed > 0 {
					return fmt.Errorf("%d snapshot(s) failed", failed)
				}
				return nil
			}
			id, err := portfolioArg(c)
			if err != nil {
				return err
			}
			snap, err := a.ValuationService.RecordSnapshot(ctx, id)
			if err != nil {
				return err
			}
			return jsonOutput(c.App.Writer, snap)
		})
	},
}

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "load portfolios, holdings and snapshots from a TOML fixture",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:      "file",
			Aliases:   []string{"f"},
			Usage:     "TOML fixture to load",
			Required:  true,
			TakesFile: true,
		},
	},
	Action: func(c *cli.Context) error {
		return withApp(c, func(ctx context.Context, a *app.App) error {
			imported, skipped, err := app.SeedFromFile(ctx, a.Storage, a.Logger, c.String("file"))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "imported %d, skipped %d\n", imported, skipped)
			return nil
		})
	},
}
