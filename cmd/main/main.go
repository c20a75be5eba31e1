package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"coin-market-api/src/config"
	"coin-market-api/src/logger"
)

// -----------------------------------------------------------------------------

func main() {
	// 1. Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	envPath := flag.String("env", ".env", "optional .env file with COINMARKET_* overrides")
	initConfig := flag.String("init-config", "", "write the default config to this path and exit")
	flag.Parse()

	if *initConfig != "" {
		defaults := &config.Config{MConfig: config.Defaults()}
		if err := defaults.Save(*initConfig); err != nil {
			fmt.Printf("Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Default config written to %s\n", *initConfig)
		return
	}

	// 2. Load config
	if err := config.LoadDotEnv(*envPath); err != nil {
		fmt.Printf("Error loading env: %v\n", err)
		os.Exit(1)
	}
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf.MConfig, conf.Name)
	defer appLogger.Sync()

	// 4. Memory limit
	applyMemoryLimit(appLogger)

	// 5. Setup Components
	app, err := setupApp(conf.MConfig)
	if err != nil {
		appLogger.Critical("Failed to initialise: %v", err)
	}

	// 6. Start Servers
	startServers(app, conf.MConfig, appLogger)

	// 7. Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	stopServers(app, appLogger)
	appLogger.Info("Shutdown complete.")
}
