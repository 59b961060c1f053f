// Command token mints an access token for the dashboard API using the
// JWT_SECRET_KEY of the running environment.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/config"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/jwt"
)

func main() {
	subject := flag.String("sub", "", "token subject, e.g. an HR user id")
	email := flag.String("email", "", "email claim")
	flag.Parse()

	if *subject == "" {
		fmt.Fprintln(os.Stderr, "-sub is required")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}
	if cfg.JWT.Secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET_KEY is not set")
		os.Exit(1)
	}

	token, exp, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).GenerateAccessToken(*subject, *email)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error generating token:", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintln(os.Stderr, "expires", time.Unix(exp, 0).UTC().Format(time.RFC3339))
}
