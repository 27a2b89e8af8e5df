package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mparkin/sfmc-go/pkg/config"
	"github.com/mparkin/sfmc-go/pkg/sfmc"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: sfmcinfo <data-extension-name>")
		os.Exit(1)
	}
	name := os.Args[1]

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Create Marketing Cloud client
	client, err := sfmc.NewWithLogger(config.Params{}, cfg, logger)
	if err != nil {
		logger.Error("Failed to create client", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to create client: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	items, err := client.DataExtensions().GetByName(ctx, name)
	if err != nil {
		logger.Error("Failed to search data extensions", zap.String("name", name), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(items) == 0 {
		fmt.Printf("No data extensions matching %q\n", name)
		return
	}

	fmt.Printf("Found %d data extension(s) matching %q:\n", len(items), name)
	for _, de := range items {
		fmt.Printf("  %s  key=%s  rows=%d  fields=%d\n", de.Name, de.Key, de.RowCount, de.FieldCount)
	}
}
