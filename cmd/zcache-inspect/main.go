package main

// main.go implements the zcache inspector CLI: it parses command-line flags,
// fetches a JSON snapshot from a target process exposing the engine's debug
// endpoint, and prints it either as pretty text or JSON. It also supports
// periodic watch mode.
//
// The target Go service is expected to expose:
//   GET /debug/zcache/snapshot — JSON payload with per-swap-type statistics.
//
// The snapshot object is intentionally generic; we decode into map[string]any
// to avoid version skew between CLI and library.
//
// © 2025 zcache authors. MIT License.

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
)

var version = "dev"

type options struct {
	target   string
	watch    bool
	interval time.Duration
	jsonOut  bool
	showVer  bool
}

func parseFlags() *options {
	opts := &options{}
	flag.StringVar(&opts.target, "target", "http://localhost:6060", "base URL of the zcache-instrumented process")
	flag.BoolVar(&opts.watch, "watch", false, "poll the snapshot endpoint repeatedly")
	flag.DurationVar(&opts.interval, "interval", 2*time.Second, "poll interval when -watch is set")
	flag.BoolVar(&opts.jsonOut, "json", false, "print the raw JSON snapshot instead of a formatted table")
	flag.BoolVar(&opts.showVer, "version", false, "print the CLI version and exit")
	flag.Parse()
	return opts
}

func main() {
	opts := parseFlags()

	if opts.showVer {
		fmt.Println(version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	if opts.watch {
		ticker := time.NewTicker(opts.interval)
		defer ticker.Stop()
		for {
			if err := dumpOnce(ctx, opts); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
			}
			select {
			case <-ticker.C:
				continue
			case <-ctx.Done():
				return
			}
		}
	}

	if err := dumpOnce(ctx, opts); err != nil {
		fatal(err)
	}
}

func dumpOnce(ctx context.Context, opts *options) error {
	snap, err := fetchSnapshot(ctx, opts.target)
	if err != nil {
		return err
	}
	if opts.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	return prettyPrint(snap)
}

func fetchSnapshot(ctx context.Context, base string) (map[string]any, error) {
	url := base + "/debug/zcache/snapshot"
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", res.Status)
	}
	var data map[string]any
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
		return nil, err
	}
	return data, nil
}

func prettyPrint(data map[string]any) error {
	fmt.Printf("Pool pages:      %v\n", data["pool_pages"])
	fmt.Printf("Stored pages:    %v\n", data["stored_pages"])
	fmt.Printf("Outstanding WB:  %v\n", data["outstanding_writebacks"])
	fmt.Printf("Pages freed:     %v\n", data["pages_written_back"])
	fmt.Printf("Stored bytes:    %s\n", humanize.Bytes(uint64(toFloat(data["pool_pages"])*4096)))
	return nil
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case json.Number:
		f, _ := t.Float64()
		return f
	default:
		return 0
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "zcache-inspect:", err)
	os.Exit(1)
}
