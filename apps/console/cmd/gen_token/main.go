package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
)

// gen_token prints a console session cookie value for local testing. The
// backend token is embedded as is; set BACKEND_TOKEN to a real one to reach
// a running backend.
func main() {
	_ = godotenv.Load()

	signingSecret := strings.TrimSpace(os.Getenv("APP_SIGNING_SECRET"))
	if len(signingSecret) < 16 {
		fmt.Fprintln(os.Stderr, "APP_SIGNING_SECRET must be at least 16 characters")
		os.Exit(1)
	}
	backendToken := strings.TrimSpace(os.Getenv("BACKEND_TOKEN"))
	if backendToken == "" {
		backendToken = "local-dev-token"
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"token": backendToken,
		"uid":   1,
		"email": "admin@citydesk.local",
		"name":  "Local Admin",
		"role":  "Admin",
		"wid":   "gen-token",
		"iat":   now.Unix(),
		"exp":   now.Add(8 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(signingSecret))
	if err != nil {
		panic(err)
	}
	fmt.Printf("citydesk_admin_session=%s\n", signedToken)
}
