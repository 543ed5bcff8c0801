package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lector/backend/internal/config"
	"lector/backend/internal/db"
	"lector/backend/internal/fetch"
	"lector/backend/internal/handler"
	transport "lector/backend/internal/http"
	"lector/backend/internal/logger"
	"lector/backend/internal/network"
	"lector/backend/internal/repository"
	"lector/backend/internal/scheduler"
	"lector/backend/internal/service"
	"lector/backend/internal/snowflake"
)

// proxyCheckURL is a lightweight endpoint used to verify the configured
// outbound proxy at startup.
const proxyCheckURL = "https://www.gstatic.com/generate_204"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel)

	if err := snowflake.Init(1); err != nil {
		log.Fatalf("init snowflake: %v", err)
	}

	dbConn, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer dbConn.Close()

	feedRepo := repository.NewFeedRepository(dbConn)
	folderRepo := repository.NewFolderRepository(dbConn)
	itemRepo := repository.NewItemRepository(dbConn)
	membershipRepo := repository.NewMembershipRepository(dbConn)

	clientFactory := network.NewClientFactory(cfg.ProxyURL)
	if cfg.ProxyURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := clientFactory.TestProxy(ctx, proxyCheckURL); err != nil {
			logger.Warn("proxy check failed, feeds may be unreachable", "proxy", cfg.ProxyURL, "error", err)
		} else {
			logger.Info("proxy check passed", "proxy", cfg.ProxyURL)
		}
		cancel()
	}

	fetcher := fetch.New(clientFactory)

	retentionService := service.NewRetentionService(feedRepo, itemRepo)
	refreshService := service.NewRefreshService(feedRepo, itemRepo, fetcher, retentionService, cfg.RefreshWorkers)
	membershipService := service.NewMembershipService(feedRepo, folderRepo, membershipRepo)
	feedService := service.NewFeedService(feedRepo, folderRepo, itemRepo, membershipService, refreshService, fetcher)
	folderService := service.NewFolderService(folderRepo, membershipService)
	itemService := service.NewItemService(itemRepo, feedRepo, folderRepo, retentionService)
	refreshTasks := service.NewRefreshTaskService()

	feedHandler := handler.NewFeedHandler(feedService, membershipService)
	folderHandler := handler.NewFolderHandler(folderService)
	itemHandler := handler.NewItemHandler(itemService)
	refreshHandler := handler.NewRefreshHandler(refreshService, refreshTasks)

	router := transport.NewRouter(feedHandler, folderHandler, itemHandler, refreshHandler)

	sched := scheduler.New(refreshService, feedRepo, cfg.RefreshInterval)
	sched.Start()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		sched.Stop()
		os.Exit(0)
	}()

	if err := router.Start(cfg.Addr); err != nil {
		log.Fatalf("start server: %v", err)
	}
}
