// mint-token creates a signed bearer token for local testing.
//
// The token's subject is the given user UUID and it expires after the
// configured TTL. The signing key is read from AUTH_SIGNING_KEY and must
// match the running server's key.
//
// Usage: go run ./scripts/mint-token [-ttl 24h] [-email a@b.c] <user-id>
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/horoscape/horoscape-engine/pkg/auth"
)

func main() {
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	email := flag.String("email", "", "Optional email claim")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-ttl 24h] [-email a@b.c] <user-id>\n", os.Args[0])
		os.Exit(1)
	}

	userID, err := uuid.Parse(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid user id %q: %v\n", args[0], err)
		os.Exit(1)
	}

	signingKey := os.Getenv("AUTH_SIGNING_KEY")
	if signingKey == "" {
		fmt.Fprintln(os.Stderr, "AUTH_SIGNING_KEY is not set")
		os.Exit(1)
	}

	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(*ttl)),
		},
		Email: *email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(signed)
}
