// Command dataset_gen generates deterministic swap-offset datasets for
// standalone load-testing of the compressed swap cache engine, outside
// `go test`. It emits newline-separated uint64 offsets which can be fed to
// an external load generator. The generation logic lives in
// internal/offsetgen, the same package bench's BenchmarkStore* cases use to
// build their dataset, so this CLI and the in-repo benchmarks never drift
// apart on what "a realistic offset dataset" means.
//
// Usage:
//
//	go run ./tools/dataset_gen -n 1000000 -dist=zipf -seed=42 -out offsets.txt
//
// Flags:
//
//	-n       number of offsets to generate (default 1e6)
//	-dist    distribution: "uniform" or "zipf" (default uniform)
//	-zipfs   Zipf s parameter (>1)  (default 1.2)
//	-zipfv   Zipf v parameter (>=1) (default 1.0)
//	-seed    RNG seed (default current time)
//	-out     output file (default stdout)
//
// © 2025 zcache authors. MIT License.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ashgrove/zcache/internal/offsetgen"
)

func main() {
	var (
		n       = flag.Int("n", 1_000_000, "number of offsets to generate")
		dist    = flag.String("dist", "uniform", "distribution: uniform or zipf")
		zipfS   = flag.Float64("zipfs", 1.2, "zipf s parameter (>1)")
		zipfV   = flag.Float64("zipfv", 1.0, "zipf v parameter (>=1)")
		seedVal = flag.Int64("seed", time.Now().UnixNano(), "PRNG seed")
		outPath = flag.String("out", "", "output file (default stdout)")
	)
	flag.Parse()

	offsets, err := offsetgen.Generate(*n, offsetgen.Params{
		Dist:  offsetgen.Dist(*dist),
		Seed:  *seedVal,
		ZipfS: *zipfS,
		ZipfV: *zipfV,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var out *os.File
	if *outPath == "" {
		out = os.Stdout
	} else {
		out, err = os.Create(*outPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot create file:", err)
			os.Exit(1)
		}
		defer out.Close()
	}

	w := bufio.NewWriterSize(out, 1<<20)
	defer w.Flush()

	for _, o := range offsets {
		fmt.Fprintln(w, o)
	}
}
