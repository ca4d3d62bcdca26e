// Command catalogcheck loads an external catalog folder the same way the
// service does and prints what would happen on reload.
//
// Usage:
//
//	go run ./cmd/catalogcheck -dir ./catalog [-json] [-strict]
//
// Exit status is 1 when the load would be aborted, or with -strict when it
// produces any warning.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"Ductolator/internal/catalog"
)

func main() {
	dir := flag.String("dir", "", "catalog folder containing materials, fittings and plumbing-code-tables.json")
	asJSON := flag.Bool("json", false, "print the load report as JSON")
	strict := flag.Bool("strict", false, "treat warnings as failures")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(2)
	}
	os.Exit(run(*dir, *asJSON, *strict, os.Stdout))
}

func run(dir string, asJSON, strict bool, out io.Writer) int {
	snap, rep := catalog.Load(dir)

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			fmt.Fprintf(os.Stderr, "encode report: %v\n", err)
			return 1
		}
	} else {
		fmt.Fprintf(out, "=== Catalog check: %s ===\n", dir)
		for _, e := range rep.Errors {
			fmt.Fprintf(out, "ERROR  %s\n", e)
		}
		for _, w := range rep.Warnings {
			fmt.Fprintf(out, "WARN   %s\n", w)
		}
		if snap != nil {
			s := snap.Summary()
			fmt.Fprintf(out, "materials=%d fittings=%d profiles=%d skipped=%d\n", len(s.Materials), len(s.Fittings), len(s.Profiles), rep.Skipped)
		}
	}

	switch {
	case snap == nil:
		if !asJSON {
			fmt.Fprintln(out, "FAIL: load would be aborted; the active catalog would be kept")
		}
		return 1
	case strict && len(rep.Warnings) > 0:
		if !asJSON {
			fmt.Fprintln(out, "FAIL: warnings present (-strict)")
		}
		return 1
	}
	if !asJSON {
		fmt.Fprintln(out, "PASS")
	}
	return 0
}
