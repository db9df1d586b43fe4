package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"fortuna/api"
	"fortuna/application"
	"fortuna/config"
	"fortuna/database"
	"fortuna/events"
	"fortuna/pricefeed"
	"fortuna/repository"
)

// priceStaleThreshold is how old the latest sample may be before the feed
// refuses to resolve settlements with it
const priceStaleThreshold = 30 * time.Second

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting settlement engine...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()
	application.RegisterSubscriptions(eventBus)

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db)

	// Initialize price feed
	log.Println("Starting price feed...")
	feed := pricefeed.NewHTTPFeed(cfg.PriceFeedURL, cfg.PriceFeedSymbols, cfg.PriceFeedPollInterval, priceStaleThreshold)
	feed.Start()

	// Initialize workers
	log.Println("Starting workers...")
	drawScheduler := application.NewDrawScheduler(uowFactory, eventBus, cfg.DrawSchedulerInterval)
	stopDrawScheduler := drawScheduler.Start(ctx)

	tradePoller := application.NewTradePoller(uowFactory, feed, eventBus, cfg.TradePollInterval)
	stopTradePoller := tradePoller.Start(ctx)

	roundWorker := application.NewRoundWorker(uowFactory, eventBus, cfg.RoundWorkerInterval)
	stopRoundWorker := roundWorker.Start(ctx)

	// Initialize admin API
	adminAPI := api.NewAdminAPI(uowFactory, feed, eventBus)
	if err := adminAPI.Start(cfg.AdminAPIPort); err != nil {
		return fmt.Errorf("failed to start admin API: %w", err)
	}

	// Wait for context cancellation
	log.Printf("Settlement engine is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down...")
	stopDrawScheduler()
	stopTradePoller()
	stopRoundWorker()
	feed.Stop()

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
