// Command devtoken mints an access token for calling the API locally, signed
// with the same secret the server verifies against.
//
//	go run ./cmd/devtoken -sub user-123 -ttl 2h
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/andrewpaige1/mindcanvas-api/auth"
	"github.com/andrewpaige1/mindcanvas-api/config"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("Warning: .env file could not be loaded: %v", err)
	}

	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" && os.Getenv("SUPABASE_URL") != "" {
		issuer = strings.TrimRight(os.Getenv("SUPABASE_URL"), "/") + "/auth/v1"
	}
	audience := os.Getenv("JWT_AUDIENCE")
	if audience == "" {
		audience = auth.RoleAuthenticated
	}

	subject := flag.String("sub", "dev-user", "token subject (owner id)")
	email := flag.String("email", "", "email claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	verify := flag.String("verify", "", "verify this token instead of minting one")
	flag.Parse()

	secret := os.Getenv("SUPABASE_JWT_SECRET")
	if secret == "" {
		log.Fatal("devtoken: SUPABASE_JWT_SECRET not set")
	}

	if *verify != "" {
		claims, err := auth.VerifyToken(*verify, secret, issuer, audience)
		if err != nil {
			log.Fatalf("devtoken: %v", err)
		}
		expires := "never"
		if claims.ExpiresAt != nil {
			expires = claims.ExpiresAt.Time.Format(time.RFC3339)
		}
		fmt.Printf("valid token for %s, expires %s\n", claims.Subject, expires)
		return
	}

	token, err := auth.CreateToken(auth.TokenParams{
		Subject:  *subject,
		Email:    *email,
		Secret:   secret,
		Issuer:   issuer,
		Audience: audience,
		TTL:      *ttl,
	})
	if err != nil {
		log.Fatalf("devtoken: %v", err)
	}
	fmt.Println(token)
}
