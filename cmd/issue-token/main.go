package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/satriahrh/lafal/internal/auth"
	"github.com/satriahrh/lafal/internal/config"
)

func main() {
	client := flag.String("client", "", "client id embedded in the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if _, err := config.LoadDotEnv(""); err != nil {
		fmt.Fprintf(os.Stderr, "could not load .env: %v\n", err)
	}

	cfg, err := config.LoadServer(config.OSEnvironment())
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg.AuthSecret == "" {
		fmt.Fprintln(os.Stderr, "AUTH_SECRET is not set")
		os.Exit(1)
	}
	if *client == "" {
		fmt.Fprintln(os.Stderr, "-client is required")
		os.Exit(2)
	}

	token, err := auth.GenerateClientToken([]byte(cfg.AuthSecret), *client, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
