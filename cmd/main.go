package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/stacksbridge/sbtc-bridge-api/api"
	"github.com/stacksbridge/sbtc-bridge-api/bridge"
	"github.com/stacksbridge/sbtc-bridge-api/config"
	"github.com/stacksbridge/sbtc-bridge-api/database"
	"github.com/stacksbridge/sbtc-bridge-api/explorer"
	"github.com/stacksbridge/sbtc-bridge-api/metrics"
	"github.com/stacksbridge/sbtc-bridge-api/poller"
	"github.com/stacksbridge/sbtc-bridge-api/signers"
	"github.com/stacksbridge/sbtc-bridge-api/stacks"
)

// Version will be set at build time
var Version = "development"

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("no .env file found, using process environment")
	}

	// create a new logger
	Logger := slog.New(tint.NewHandler(os.Stderr, nil))

	// set global logger with custom options
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level: slog.LevelDebug,
		}),
	))

	Logger.Info("Starting sbtc-bridge-api ("+Version+")",
		"Go Version", runtime.Version(),
		"Operating System", runtime.GOOS,
		"Architecture", runtime.GOARCH)

	networkInfo, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	Logger.Info("Configured network pair", "network", networkInfo.Network)

	m := metrics.NewMetrics(nil)

	signerClient, err := signers.NewClient(signers.ClientOpts{
		Endpoint: networkInfo.SignerAPIURL,
		Logger:   Logger.With("component", "signer-client"),
		Metrics:  m,
	})
	if err != nil {
		log.Fatalf("failed to create signer client: %v", err)
	}

	explorerClient, err := explorer.NewClient(explorer.ClientOpts{
		Endpoint: networkInfo.ExplorerURL,
		Logger:   Logger.With("component", "explorer-client"),
		Metrics:  m,
	})
	if err != nil {
		log.Fatalf("failed to create explorer client: %v", err)
	}

	stacksClient, err := stacks.NewClient(stacks.ClientOpts{
		Endpoint:        networkInfo.StacksNodeURL,
		Network:         networkInfo.Network,
		ContractAddress: networkInfo.ContractAddress,
		ContractName:    networkInfo.ContractName,
		Logger:          Logger.With("component", "stacks-client"),
		Metrics:         m,
	})
	if err != nil {
		log.Fatalf("failed to create stacks client: %v", err)
	}

	db, err := database.NewDatabase(database.DatabaseOpts{
		URI:          networkInfo.DatabaseURI,
		DatabaseName: networkInfo.DatabaseName,
		Logger:       Logger.With("component", "database"),
	})
	if err != nil {
		log.Fatalf("failed to create database: %v", err)
	}
	if err := db.CreateIndexes(context.Background()); err != nil {
		log.Fatalf("failed to create database indexes: %v", err)
	}

	svc := bridge.NewService(bridge.ServiceOpts{
		Signer:          signerClient,
		Explorer:        explorerClient,
		Ledger:          stacksClient,
		Store:           db,
		Metrics:         m,
		Logger:          Logger.With("component", "bridge"),
		Network:         networkInfo.Network,
		ContractAddress: networkInfo.ContractAddress,
		ContractName:    networkInfo.ContractName,
		DepositTTL:      networkInfo.DepositTTL,
	})

	depositPoller, err := poller.NewPoller(poller.PollerOpts{
		Service:  svc,
		Database: db,
		Interval: networkInfo.PollInterval,
		Logger:   Logger.With("component", "poller"),
	})
	if err != nil {
		log.Fatalf("failed to create poller: %v", err)
	}

	// start api server
	server, err := api.NewServer(api.ServerOpts{
		Logger:   Logger.With("component", "api-server"),
		Service:  svc,
		Database: db,
		Metrics:  m,
		Port:     networkInfo.APIPort,
	})
	if err != nil {
		log.Fatalf("failed to create api server: %v", err)
	}

	go server.StartServer()

	// Create context that will be canceled on SIGINT or SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle OS signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start poller in a goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- depositPoller.Run(ctx)
	}()

	// Wait for either error or signal
	select {
	case err := <-errChan:
		if err != nil {
			log.Printf("Poller error: %v", err)
		}
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal: %v\n", sig)
		fmt.Println("Shutting down gracefully...")
		cancel() // This will trigger shutdown via context

		// Wait for poller to finish
		if err := <-errChan; err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}
}
