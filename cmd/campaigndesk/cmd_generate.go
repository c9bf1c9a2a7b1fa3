package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/HerbHall/campaigndesk/pkg/generation"
	"github.com/gosuri/uitable"
)

// runGenerate sends one prompt and prints the reply. With -stream-to-stdout
// deltas are printed as they arrive.
func runGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	stream := fs.Bool("stream-to-stdout", false, "print deltas as they arrive")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: campaigndesk generate [-config file] [-stream-to-stdout] <prompt>")
		fs.PrintDefaults()
	}
	_, cfg, logger := loadConfig(fs, args)
	defer func() { _ = logger.Sync() }()

	prompt := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if prompt == "" {
		fs.Usage()
		os.Exit(2)
	}

	gen, err := newGenerationClient(cfg, logger.Named("generation"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create generation client: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := generate(ctx, gen, prompt, *stream, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "generate: %v\n", err)
		if code := generation.StatusCode(err); code != 0 {
			fmt.Fprintf(os.Stderr, "service answered HTTP %d\n", code)
		}
		os.Exit(1)
	}
}

// generate writes the reply for prompt to w, streaming deltas when stream
// is set. The output always ends with a newline.
func generate(ctx context.Context, gen generation.Generator, prompt string, stream bool, w io.Writer) error {
	var opts []generation.CallOption
	if stream {
		opts = append(opts, generation.WithStreamFunc(func(_ context.Context, delta string) error {
			_, err := io.WriteString(w, delta)
			return err
		}))
	}

	text, err := gen.Generate(ctx, prompt, opts...)
	if err != nil {
		return err
	}
	if !stream {
		if _, err := io.WriteString(w, text); err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// runDiag checks the generation service: an HTTP heartbeat against the base
// URL and an ICMP ping of its host.
func runDiag(args []string) {
	fs := flag.NewFlagSet("diag", flag.ExitOnError)
	skipPing := fs.Bool("no-ping", false, "skip the ICMP ping")
	_, cfg, logger := loadConfig(fs, args)
	defer func() { _ = logger.Sync() }()

	gen, err := newGenerationClient(cfg, logger.Named("generation"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create generation client: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	table := uitable.New()
	table.RightAlign(0)
	table.Separator = " "
	table.AddRow("endpoint:", gen.Endpoint())
	table.AddRow("mode:", string(gen.Mode()))

	failed := false
	if err := gen.Heartbeat(ctx); err != nil {
		table.AddRow("heartbeat:", "FAIL "+err.Error())
		failed = true
	} else {
		table.AddRow("heartbeat:", "ok")
	}

	if !*skipPing {
		res, err := gen.Ping(ctx)
		switch {
		case err != nil:
			table.AddRow("ping:", "error "+err.Error())
		case res.Reachable():
			table.AddRow("ping:", fmt.Sprintf("%s %d/%d replies, avg %s", res.Host, res.Received, res.Sent, res.AvgRTT))
		default:
			table.AddRow("ping:", fmt.Sprintf("%s no replies (%d sent)", res.Host, res.Sent))
		}
	}

	fmt.Println(table.String())
	if failed {
		os.Exit(1)
	}
}
