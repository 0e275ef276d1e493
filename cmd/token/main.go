// Command token issues a bearer token for the JSON API and, optionally, a
// random secret for TELEGRAM_WEBHOOK_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"Vitabot/internal/auth"
	"Vitabot/internal/utility"
)

func main() {
	_ = godotenv.Load()

	subject := flag.String("sub", "owner", "token subject")
	ttl := flag.Duration("ttl", auth.AccessTokenDuration, "token lifetime")
	webhookSecret := flag.Bool("webhook-secret", false, "also print a random webhook secret")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is not set")
		os.Exit(1)
	}

	token, err := auth.GenerateAccessToken(secret, *subject, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)

	if *webhookSecret {
		s, err := utility.GenerateSecureToken(32)
		if err != nil {
			fmt.Fprintf(os.Stderr, "generate webhook secret: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("TELEGRAM_WEBHOOK_SECRET=%s\n", s)
	}

	fmt.Fprintf(os.Stderr, "expires %s\n", time.Now().Add(*ttl).Format(time.RFC3339))
}
