// Command devtoken prints an access token for an owner id. It signs with the
// same JWT_SECRET as the server and is meant for local development only.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"

	"github.com/dtroode/gophkeeper-vault/internal/token"
)

type devConfig struct {
	Secret string `env:"JWT_SECRET" envDefault:"devsecret"`
}

func main() {
	owner := flag.String("owner", "", "owner id (UUID); a random one is generated when empty")
	ttl := flag.Duration("ttl", 15*time.Minute, "token lifetime")
	flag.Parse()

	var cfg devConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	tok, ownerID, err := issue(cfg.Secret, *owner, *ttl)
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}

	fmt.Fprintf(os.Stderr, "owner: %s\n", ownerID)
	fmt.Println(tok)
}

func issue(secret, owner string, ttl time.Duration) (string, uuid.UUID, error) {
	ownerID := uuid.New()
	if owner != "" {
		var err error
		ownerID, err = uuid.Parse(owner)
		if err != nil {
			return "", uuid.Nil, fmt.Errorf("invalid owner id: %w", err)
		}
	}
	if ownerID == uuid.Nil {
		return "", uuid.Nil, fmt.Errorf("owner id must not be nil")
	}
	if ttl <= 0 {
		return "", uuid.Nil, fmt.Errorf("ttl must be positive")
	}

	tok, err := token.NewJWT(secret, token.WithAccessTTL(ttl)).GenerateAccessToken(ownerID)
	if err != nil {
		return "", uuid.Nil, err
	}
	return tok, ownerID, nil
}
