package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"wellbridge/internal/agent"
	"wellbridge/internal/config"
	"wellbridge/internal/db"
	"wellbridge/internal/httpapi"
	"wellbridge/internal/llm"
	"wellbridge/internal/logging"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	dbConn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbConn.PingContext(ctx); err != nil {
		logger.Fatal("ping database", zap.Error(err))
	}
	if err := db.Migrate(context.Background(), dbConn); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}
	repo := db.NewRepository(dbConn)

	llmClient := llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)

	executor := agent.BuildExecutor(agent.Deps{
		LLM:   llmClient,
		Store: repo,
		Audit: repo,
		Log:   logger,
	})

	srv := httpapi.NewServer(repo, executor, logger)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, srv); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}
