package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/ckd-screening/pkg/analytics"
	"github.com/synaptica-ai/ckd-screening/pkg/common/config"
	"github.com/synaptica-ai/ckd-screening/pkg/common/database"
	"github.com/synaptica-ai/ckd-screening/pkg/common/kafka"
	"github.com/synaptica-ai/ckd-screening/pkg/common/logger"
	"github.com/synaptica-ai/ckd-screening/pkg/gateway/middleware"
	"github.com/synaptica-ai/ckd-screening/pkg/observability/metrics"
	"github.com/synaptica-ai/ckd-screening/pkg/prediction"
	"github.com/synaptica-ai/ckd-screening/pkg/risk"
	"github.com/synaptica-ai/ckd-screening/pkg/submission"
	"github.com/synaptica-ai/ckd-screening/pkg/terminology"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel)

	db, err := database.Open(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to open database")
	}
	defer database.Close(db)

	repo := submission.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate submission table")
	}

	catalog, err := terminology.Load(cfg.TerminologyCatalog)
	if err != nil {
		logger.Log.WithError(err).Warn("failed to load terminology catalog, using defaults")
		catalog = terminology.DefaultCatalog()
	}

	var publisher prediction.Publisher
	if cfg.KafkaPredictionTopic != "" {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaPredictionTopic)
		defer producer.Close()
		publisher = producer
	}

	var tally prediction.Tally
	if redisClient := database.NewRedis(cfg); redisClient != nil {
		defer redisClient.Close()
		tally = analytics.NewTally(redisClient, cfg.TallyTTL)
	}

	m := metrics.New()
	svc := prediction.NewService(risk.NewEvaluator(), repo, catalog, publisher, tally, m)
	handler := prediction.NewHTTPHandler(svc, cfg.MaxRequestBody, cfg.RecentLimit)

	router := mux.NewRouter()
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	handler.Register(router.PathPrefix("/api").Subrouter())

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      middleware.Recovery(middleware.Logging(middleware.CORS(cfg.CORSOrigin)(router))),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"addr":      cfg.Addr(),
			"db_driver": cfg.DBDriver,
			"kafka":     publisher != nil,
			"redis":     tally != nil,
		}).Info("CKD Prediction API started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down CKD Prediction API...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	logger.Log.Info("CKD Prediction API stopped")
}
