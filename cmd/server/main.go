package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/nadmax/servicetime/internal/api"
	"github.com/nadmax/servicetime/internal/catalog"
	"github.com/nadmax/servicetime/internal/config"
	"github.com/nadmax/servicetime/internal/estimator"
	"github.com/nadmax/servicetime/internal/inventory"
	"github.com/nadmax/servicetime/internal/middleware"
	"github.com/nadmax/servicetime/internal/notify"
	"github.com/nadmax/servicetime/internal/repository"
	"github.com/nadmax/servicetime/internal/service"
	"github.com/nadmax/servicetime/internal/worker"
	"github.com/nadmax/servicetime/internal/workload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		backend    workload.Backend
		redisQueue *workload.RedisQueue
	)
	if cfg.RedisAddr != "" {
		redisQueue, err = workload.NewRedisQueue(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatal(err)
		}
		backend = redisQueue
		log.Printf("Connected to Redis at %s", cfg.RedisAddr)
	} else {
		backend = workload.NewMemoryQueue()
		log.Println("REDIS_ADDR not set, using in-memory service queue")
	}

	active := cfg.ActiveWorkload
	if active == config.SimulateWorkload {
		active = workload.SimulatedWorkload(rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)))
		log.Printf("Simulated active workload: %d of %d workers", active, cfg.TotalWorkers)
	}

	tracker, err := workload.NewTracker(cfg.TotalWorkers, active, backend)
	if err != nil {
		log.Fatal(err)
	}

	defer func() {
		if err := tracker.Close(); err != nil {
			log.Printf("failed to close service queue: %v", err)
		}
	}()

	persister, err := newInventoryPersister(cfg, redisQueue)
	if err != nil {
		log.Fatal(err)
	}

	inv, err := inventory.Open(ctx, persister)
	if err != nil {
		log.Fatal(err)
	}

	c := catalog.Default()

	predictor, err := newPredictor(cfg, c)
	if err != nil {
		log.Fatal(err)
	}

	sender := newAlertSender(cfg.Email)
	alerts := worker.NewWorker(fmt.Sprintf("alerts-%d", os.Getpid()), sender)
	go alerts.Start()

	opts := []service.Option{service.WithAlerts(alerts)}
	if cfg.PostgresDSN != "" {
		repo, err := repository.NewPostgresServiceRepository(cfg.PostgresDSN)
		if err != nil {
			log.Fatal(err)
		}

		defer func() {
			if err := repo.Close(); err != nil {
				log.Printf("failed to close Postgres repository: %v", err)
			}
		}()

		opts = append(opts, service.WithHistory(repo))
		log.Println("Service history enabled")
	} else {
		log.Println("POSTGRES_DSN not set, service history disabled")
	}

	svc := service.New(c, inv, tracker, predictor, opts...)

	go startMetricsCollector(ctx, cfg.MetricsInterval, tracker, inv)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.MetricsMiddleware(api.NewAPI(svc, cfg.WebDir)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("failed to shut down server: %v", err)
	}
	alerts.Stop()
}

func newInventoryPersister(cfg *config.Config, redisQueue *workload.RedisQueue) (inventory.Persister, error) {
	switch cfg.InventoryBackend {
	case config.InventoryBackendRedis:
		if redisQueue == nil {
			return nil, errors.New("redis inventory backend requires REDIS_ADDR")
		}
		log.Printf("Inventory stored in Redis key %q", cfg.InventoryRedisKey)
		return inventory.NewRedisPersister(redisQueue.Client(), cfg.InventoryRedisKey), nil
	default:
		log.Printf("Inventory stored in %s", cfg.InventoryFile)
		return inventory.NewFilePersister(cfg.InventoryFile), nil
	}
}

func newPredictor(cfg *config.Config, c *catalog.Catalog) (estimator.Predictor, error) {
	if cfg.ModelPath != "" {
		model, err := estimator.LoadModel(cfg.ModelPath)
		if err != nil {
			return nil, err
		}
		log.Printf("Loaded prediction model from %s", cfg.ModelPath)
		return model, nil
	}

	opts := []estimator.Option{estimator.WithReferenceYear(cfg.ReferenceYear)}
	if !cfg.PredictionNoise {
		opts = append(opts, estimator.WithNoise(estimator.ZeroNoise))
	}
	log.Println("MODEL_PATH not set, using heuristic predictor")

	return estimator.NewHeuristic(c, opts...), nil
}

func newAlertSender(cfg config.EmailConfig) notify.Sender {
	if !cfg.Enabled() {
		log.Println("Email not configured, low stock alerts will be logged")
		return notify.LogSender{}
	}

	return notify.NewSendGridSender(cfg.APIKey, cfg.FromName, cfg.FromAddress, cfg.To)
}
