// Command apitoken issues a bearer token for the /api routes, signed with
// API_TOKEN_KEY (read from the environment or .env).
//
// Usage:
//
//	go run ./cmd/apitoken -sub mech-team -ttl 720h
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"Ductolator/internal/auth"
	"Ductolator/internal/config"
)

func main() {
	sub := flag.String("sub", "", "token subject (team or client name)")
	ttl := flag.Duration("ttl", 30*24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	os.Exit(run(cfg.APITokenKey, *sub, *ttl, clockwork.NewRealClock(), os.Stdout, os.Stderr))
}

func run(key, sub string, ttl time.Duration, clock clockwork.Clock, out, errOut io.Writer) int {
	if sub == "" || ttl <= 0 {
		fmt.Fprintln(errOut, "a subject and a positive -ttl are required")
		return 2
	}
	token, err := auth.IssueToken([]byte(key), sub, ttl, clock.Now())
	if err != nil {
		fmt.Fprintf(errOut, "issue token: %v (is API_TOKEN_KEY set?)\n", err)
		return 1
	}
	fmt.Fprintln(out, token)
	return 0
}
