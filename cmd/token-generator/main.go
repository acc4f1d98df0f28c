// Command token-generator mints a bearer token for local development. In
// production tokens come from the identity service; this tool signs one with
// the same shared secret so the protected endpoints can be exercised by hand.
//
// Usage:
//
//	token-generator -user 6f1c1a2e-5b0a-4f51-9d8e-1a2b3c4d5e6f -ttl 1h
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Auroral0810/LaTexia-sub000/internal/config"
	"github.com/Auroral0810/LaTexia-sub000/internal/platform/clock"
	"github.com/Auroral0810/LaTexia-sub000/internal/service/auth"
	"github.com/google/uuid"
)

func main() {
	userFlag := flag.String("user", "", "user id (UUID) to embed; a random one is used when empty")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	secret := flag.String("secret", os.Getenv("PRACTICE_AUTH_JWT_SECRET"), "HS256 signing secret")
	flag.Parse()

	if err := run(*userFlag, *ttl, *secret); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(userArg string, ttl time.Duration, secret string) error {
	userID := uuid.New()
	if userArg != "" {
		parsed, err := uuid.Parse(userArg)
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", userArg, err)
		}
		userID = parsed
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", ttl)
	}

	svc, err := auth.NewJWTService(config.AuthConfig{JWTSecret: secret}, clock.Real())
	if err != nil {
		return err
	}
	token, err := svc.GenerateToken(context.Background(), userID, ttl)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	fmt.Printf("user_id: %s\n", userID)
	fmt.Printf("expires: %s\n", time.Now().Add(ttl).UTC().Format(time.RFC3339))
	fmt.Println(token)
	return nil
}
