package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/delaneyj/classic/browser"
	"github.com/delaneyj/classic/route"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

const (
	suspenseKey = "suspense"
	printKey    = "print"
)

func navigateCommand() *cli.Command {
	return &cli.Command{
		Name:      "navigate",
		Usage:     "Open a page headlessly and navigate through paths, reporting every fetch",
		ArgsUsage: "URL [PATH...]",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  suspenseKey,
				Usage: "Override router.suspense_delay",
			},
			&cli.BoolFlag{
				Name:  printKey,
				Usage: "Print the final document",
			},
		},
		Action: navigate,
	}
}

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Show what navigating to each path from a page would fetch",
		ArgsUsage: "URL PATH...",
		Action:    resolve,
	}
}

// session is a window with a router, opened at the first argument.
func session(ctx context.Context, cmd *cli.Command, fetched func(route.FetchInfo)) (*browser.Window, *route.Router, error) {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return nil, nil, err
	}
	start := cmd.Args().First()
	if start == "" {
		return nil, nil, errors.New("missing URL")
	}

	opts := cfg.RouteOptions()
	if d := cmd.Duration(suspenseKey); d > 0 {
		opts = append(opts, route.WithSuspenseDelay(d))
	}
	opts = append(opts, route.WithLogger(logger))
	if fetched != nil {
		opts = append(opts, route.WithFetchObserver(fetched))
	}

	win := browser.New(browser.WithLogger(logger))
	r, err := route.New(win, opts...)
	if err != nil {
		return nil, nil, err
	}
	if err := win.Open(ctx, start); err != nil {
		r.Close()
		return nil, nil, err
	}
	return win, r, nil
}

func navigate(ctx context.Context, cmd *cli.Command) error {
	var (
		mu      sync.Mutex
		fetches []route.FetchInfo
	)
	win, r, err := session(ctx, cmd, func(fi route.FetchInfo) {
		mu.Lock()
		defer mu.Unlock()
		fetches = append(fetches, fi)
	})
	if err != nil {
		return err
	}
	defer r.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Path", "Location", "Title", "Fetches", "Bytes", "Took", "Error"})

	for _, path := range cmd.Args().Tail() {
		mu.Lock()
		fetches = fetches[:0]
		mu.Unlock()

		start := time.Now()
		navErr := r.Navigate(ctx, path)
		r.Wait()
		took := time.Since(start)

		var loc, title string
		win.Do(func() {
			loc = win.Location().String()
			title = win.Document().Title()
		})

		mu.Lock()
		size := 0
		for _, fi := range fetches {
			size += fi.Bytes
		}
		n := len(fetches)
		mu.Unlock()

		msg := ""
		if navErr != nil {
			msg = navErr.Error()
		}
		table.Append([]string{
			path,
			loc,
			title,
			humanize.Comma(int64(n)),
			humanize.Bytes(uint64(size)),
			took.Round(time.Microsecond).String(),
			msg,
		})
	}
	table.Render()

	if cmd.Bool(printKey) {
		win.Do(func() {
			fmt.Fprintln(os.Stdout, win.Document().Render())
		})
	}
	return nil
}

func resolve(ctx context.Context, cmd *cli.Command) error {
	win, r, err := session(ctx, cmd, nil)
	if err != nil {
		return err
	}
	defer r.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Path", "Target", "Requests", "Fetch plan"})
	table.SetAutoWrapText(false)

	for _, path := range cmd.Args().Tail() {
		win.Do(func() {
			res, ok := r.Resolve(path)
			if !ok {
				table.Append([]string{path, "-", "0", "full navigation"})
				return
			}
			target := res.Target.Pattern()
			if target == "" {
				target = "(slot)"
			}
			table.Append([]string{
				path,
				target,
				humanize.Comma(int64(len(res.URLs))),
				strings.Join(res.URLs, "\n"),
			})
		})
	}
	table.Render()
	return nil
}
