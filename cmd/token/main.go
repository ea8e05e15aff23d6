// Command token mints a bearer token for the feed administration endpoints.
// It reads the same JWT_SECRET the server is configured with and prints the
// signed token to stdout.
//
//	JWT_SECRET=... go run ./cmd/token -subject ops -ttl 24h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sakif/oracle-enclave/internal/auth"
)

func main() {
	subject := flag.String("subject", "operator", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "token: JWT_SECRET must be set")
		os.Exit(1)
	}

	token, err := auth.NewTokenService(secret, *ttl).Issue(*subject)
	if err != nil {
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
