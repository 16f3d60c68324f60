// Package main is the entry point for the word translator Lambda function.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/pricofy/word-translator/internal/app"
	"github.com/pricofy/word-translator/internal/config"
	"github.com/pricofy/word-translator/internal/logging"
	"github.com/pricofy/word-translator/internal/warmup"
)

func main() {
	cfg, err := config.Load(os.Getenv("TRANSLATOR_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, os.Stdout)

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to load dictionary", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	warmer := warmup.NewWarmer(nil, logger,
		warmup.WithMetrics(a.Metrics),
		warmup.WithDictionary(a.Store.Stats))

	lambda.Start(func(ctx context.Context, event json.RawMessage) (interface{}, error) {
		// Warmup detection must run before any other processing.
		if ev, ok := warmup.Detect(event); ok {
			return warmer.Handle(ctx, ev)
		}
		return a.Handler.Dispatch(ctx, event)
	})
}
