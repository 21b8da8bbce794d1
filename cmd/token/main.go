// Command token signs an operator JWT for the schema and model management
// routes.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"BioVision/internal/entity"
	jwtPkg "BioVision/pkg/jwt"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	username := flag.String("user", "operator", "operator name stored in the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	token, expiresAt, err := jwtPkg.Sign(entity.Operator{
		ID:       uuid.NewString(),
		Username: *username,
	}, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", time.Unix(expiresAt, 0).Format(time.RFC3339))
}
