package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"

	"invoice-accrual/internal/gateway"
	"invoice-accrual/internal/usecase"
)

func main() {
	configPath := flag.String("config", "", "Path to the accrualgen config file (accounts, coupons, engine settings)")
	ordersPath := flag.String("orders", "", "Path to a JSON file holding an array of completed orders (required)")
	rateStr := flag.String("rate", "1", "Conversion rate from the order currency into the target ledger currency")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	if *ordersPath == "" {
		fmt.Println("Error: the -orders flag is required.")
		flag.Usage()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	rate, err := decimal.NewFromString(*rateStr)
	if err != nil {
		logger.Error("invalid conversion rate", slog.String("rate", *rateStr), slog.String("error", err.Error()))
		os.Exit(1)
	}

	cfg, err := gateway.LoadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// --- Dependency injection ---
	// 1. Gateways at the outermost layer.
	orderSource := gateway.NewJSONOrderSource(*ordersPath)
	rateSource := gateway.NewStaticRateSource(rate)

	// 2. The engine, wired with the validated account tables.
	reconciler, err := usecase.NewReconciler(&cfg.Accounts, cfg.Catalog(), usecase.Config{
		TargetCurrency:  cfg.Engine.TargetCurrency,
		Period:          cfg.Engine.Period,
		Simplify:        cfg.Engine.Simplify,
		BankFeesAccount: cfg.Engine.BankFeesAccount,
		PrimaryAccounts: cfg.Engine.PrimaryAccounts,
	}, logger)
	if err != nil {
		logger.Error("failed to build reconciler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	results, err := reconciler.ReconcileBatch(context.Background(), orderSource, rateSource)
	if err != nil {
		logger.Error("batch reconciliation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	output, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		logger.Error("failed to render results", slog.String("error", err.Error()))
		os.Exit(1)
	}
	fmt.Println(string(output))

	for _, r := range results {
		if !r.OK() {
			os.Exit(2)
		}
	}
}
