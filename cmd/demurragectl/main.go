// Command demurragectl replays a YAML scenario of ledger operations against
// an in-memory demurrage ledger and prints the resulting balances.
//
//	demurragectl -scenario testdata/halflife.yaml
//
// Settings may also come from the environment or a .env file:
// DEMURRAGE_SCENARIO, DEMURRAGE_LOG_LEVEL and DEMURRAGE_STRICT.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	var (
		scenarioFlag string
		levelFlag    string
		strictFlag   bool
	)

	flag.StringVar(&scenarioFlag, "scenario", os.Getenv("DEMURRAGE_SCENARIO"), "Path to the YAML scenario")
	flag.StringVar(&levelFlag, "log-level", envOr("DEMURRAGE_LOG_LEVEL", "warn"), "Log level: debug, info, warn or error")
	flag.BoolVar(&strictFlag, "strict", envBool("DEMURRAGE_STRICT"), "Reject operations on undeclared currencies")
	flag.Parse()

	if scenarioFlag == "" {
		log.Fatal("no scenario given; use -scenario or DEMURRAGE_SCENARIO")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(levelFlag)); err != nil {
		log.Fatalf("log level: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	s, err := LoadScenario(scenarioFlag)
	if err != nil {
		log.Fatalf("load scenario: %v", err)
	}

	if err := Run(context.Background(), s, os.Stdout, logger, strictFlag); err != nil {
		log.Fatalf("scenario failed: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}
