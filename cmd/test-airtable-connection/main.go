// Diagnostic binary: verifies the tabular store credentials and prints the
// first few worklist records with their validation verdicts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/apdesk/apdesk/internal/domain/priority"
	"github.com/apdesk/apdesk/internal/domain/validation"
	"github.com/apdesk/apdesk/internal/infrastructure/external/airtable"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
)

func main() {
	apiKey := flag.String("key", "", "Airtable API key (or set AIRTABLE_API_KEY env var)")
	baseID := flag.String("base", "", "Airtable base ID (or set AIRTABLE_BASE_ID env var)")
	table := flag.String("table", "Invoices", "Invoice table name")
	timeout := flag.Duration("timeout", 30*time.Second, "API call timeout")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	_ = gotenv.Load()

	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *apiKey == "" {
		*apiKey = os.Getenv("AIRTABLE_API_KEY")
	}
	if *baseID == "" {
		*baseID = os.Getenv("AIRTABLE_BASE_ID")
	}
	if *apiKey == "" || *baseID == "" {
		fmt.Fprintf(os.Stderr, "ERROR: AIRTABLE_API_KEY / AIRTABLE_BASE_ID not set and no flags provided\n")
		fmt.Fprintf(os.Stderr, "Usage: test-airtable-connection --key pat... --base app... [--table Invoices]\n")
		os.Exit(1)
	}

	fmt.Println("=== Airtable Connection Test ===")
	fmt.Println("Configuration:")
	fmt.Printf("  Base ID: %s\n", *baseID)
	fmt.Printf("  Table: %s\n", *table)
	fmt.Printf("  API key length: %d chars\n", len(*apiKey))
	fmt.Printf("  Timeout: %v\n", *timeout)
	fmt.Println()

	client := airtable.NewClient(airtable.Config{
		APIKey:  *apiKey,
		BaseID:  *baseID,
		Table:   *table,
		Timeout: *timeout,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	invoices, err := client.ListInvoices(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAILED: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OK: listed %d records in %v\n\n", len(invoices), time.Since(start).Round(time.Millisecond))

	priority.Sort(invoices)

	max := 5
	if len(invoices) < max {
		max = len(invoices)
	}
	for _, inv := range invoices[:max] {
		summary := validation.Summary(inv)
		if summary == "" {
			summary = "clean"
		}
		fmt.Printf("  [rank %d] %s  %s  %s  (%s)\n",
			priority.Rank(inv), inv.ID, inv.InvoiceNumber, inv.Status, summary)
	}
}
