package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"neontask/internal/client"
)

const defaultAPI = "http://localhost:3001/api"

func main() {
	_ = godotenv.Load()

	apiURL := flag.String("api", envOr("NEONTASK_API", defaultAPI), "NeonTask API base URL")
	sessionPath := flag.String("session", os.Getenv("NEONTASK_SESSION"), "session file (default: user config dir)")
	flag.Parse()

	if *sessionPath == "" {
		p, err := client.DefaultSessionPath()
		if err != nil {
			fail(err)
		}
		*sessionPath = p
	}
	sess, err := client.OpenSession(*sessionPath)
	if err != nil {
		fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := client.NewApp(client.NewAPI(*apiURL, nil), sess, os.Stdin, os.Stdout)
	if err := app.Run(ctx, flag.Args()); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fail(err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "ERROR:", err)
	os.Exit(1)
}
