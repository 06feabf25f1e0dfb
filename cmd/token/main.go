// Command token mints a bearer token for a user with the server's JWT secret.
//
//	token -user 6f1c0b9e-3d5e-4c1a-9a39-1b6f4d2e7a10
//
// Without -user a fresh user ID is generated.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/phrazzld/petdeck/internal/config"
	"github.com/phrazzld/petdeck/internal/platform/clock"
	"github.com/phrazzld/petdeck/internal/service/auth"
)

func main() {
	userFlag := flag.String("user", "", "user ID to put in the token")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	userID := uuid.New()
	if *userFlag != "" {
		userID, err = uuid.Parse(*userFlag)
		if err != nil {
			log.Fatalf("invalid user ID %q: %v", *userFlag, err)
		}
	}

	jwtService, err := auth.NewJWTService(cfg.Auth, clock.System{})
	if err != nil {
		log.Fatalf("failed to create JWT service: %v", err)
	}
	token, err := jwtService.GenerateToken(context.Background(), userID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}

	fmt.Printf("User:  %s\nToken: %s\n", userID, token)
}
