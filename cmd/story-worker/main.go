// Package main 故事生成服务入口（story-worker）：
// Redis Stream 任务消费 + 轻量 HTTP 面（提交任务、查询产物与进度、健康检查、指标）。
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ether-stories-api/internal/application/carbon"
	"ether-stories-api/internal/application/story"
	"ether-stories-api/internal/config"
	"ether-stories-api/internal/domain/entity"
	einocallback "ether-stories-api/internal/infrastructure/eino/callback"
	"ether-stories-api/internal/infrastructure/llm"
	"ether-stories-api/internal/infrastructure/messaging"
	"ether-stories-api/internal/infrastructure/persistence/postgres"
	redisstore "ether-stories-api/internal/infrastructure/persistence/redis"
	"ether-stories-api/internal/infrastructure/providers"
	"ether-stories-api/internal/infrastructure/storage"
	appErrors "ether-stories-api/pkg/errors"
	"ether-stories-api/pkg/logger"
	"ether-stories-api/pkg/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()

	shutdownTracer, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "story-worker",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", "error", err)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		logger.Fatal(ctx, "failed to init postgres", "error", err)
	}
	defer func() { _ = pgClient.Close() }()

	redisClient, err := redisstore.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Fatal(ctx, "failed to init redis", "error", err)
	}
	defer func() { _ = redisClient.Close() }()

	mediaStore, err := storage.NewFileStore(cfg.Storage.MediaDir, cfg.Storage.PublicURL)
	if err != nil {
		logger.Fatal(ctx, "failed to init media store", "error", err)
	}

	// LLM 工厂与全局 callbacks（token 指标 + 链路追踪）
	einoFactory := llm.NewEinoFactory(cfg)
	einocallback.Init()

	retry := providers.NewRetryPolicy(cfg.Retry)
	textGen := providers.NewEinoTextGenerator(cfg, einoFactory, retry)
	imageGen := providers.NewArkImageClient(cfg.Image, mediaStore, retry)
	speechGen := providers.NewOpenAISpeechSynthesizer(cfg.Speech, mediaStore, retry)
	translator := providers.NewEinoTranslator(cfg, einoFactory, retry)

	meter := carbon.NewMeter(carbon.NewPowerEstimator(cfg.Carbon))
	recorder := carbon.NewRecorder(postgres.NewEmissionEventRepository(pgClient))

	storyRepo := postgres.NewStoryArtifactRepository(pgClient)
	progressStore := redisstore.NewProgressStore(redisClient)
	cache := redisstore.NewCache(redisClient)

	planner := story.NewPlanner()
	generator := story.NewChapterGenerator(textGen, imageGen, speechGen, translator, meter)
	orchestrator := story.NewOrchestrator(planner, generator, storyRepo, recorder, progressStore)
	queries := story.NewQueryService(storyRepo, cache)

	producer := messaging.NewProducer(redisClient.Redis(), int64(cfg.Messaging.RedisStream.MaxLen))

	consumer := messaging.NewConsumer(redisClient.Redis(), messaging.ConsumerConfig{
		Stream:       messaging.StreamStoryGen,
		Group:        messaging.ConsumerGroupStoryWorker,
		ConsumerName: hostnameConsumerName(),
		BlockTimeout: cfg.Messaging.RedisStream.BlockTimeout,
		RetryLimit:   cfg.Messaging.RedisStream.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    cfg.Messaging.RedisStream.RetryBackoff.Initial,
			Max:        cfg.Messaging.RedisStream.RetryBackoff.Max,
			Multiplier: cfg.Messaging.RedisStream.RetryBackoff.Multiplier,
		},
	})

	consumer.RegisterHandler("story_generate", func(msgCtx context.Context, msg *messaging.Message) error {
		var payload messaging.StoryGenerationJobMessage
		if err := msg.UnmarshalPayload(&payload); err != nil {
			return err
		}

		artifact, genErr := orchestrator.GenerateStory(msgCtx, payload.Request)
		if genErr != nil {
			// InvalidRequest 重试也不会变好，直接确认避免死信堆积
			if appErrors.IsCode(genErr, appErrors.CodeInvalidRequest) {
				logger.Warn(msgCtx, "dropping invalid story job", "job_id", payload.JobID, "error", genErr.Error())
				return nil
			}
			return genErr
		}

		// 覆盖保存后使读缓存失效
		_ = cache.InvalidateStory(msgCtx, artifact.ID)
		return nil
	})

	if err := consumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start consumer", "error", err)
	}

	limiter := redisstore.NewRateLimiter(redisClient)

	httpServer := newHTTPServer(cfg, pgClient, redisClient, producer, queries, progressStore, limiter)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "http server failed", "error", err)
		}
	}()

	logger.Info(ctx, "story-worker started",
		"http_addr", httpServer.Addr,
		"stream", string(messaging.StreamStoryGen),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "story-worker shutting down")
	consumer.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
}

func newHTTPServer(
	cfg *config.Config,
	pgClient *postgres.Client,
	redisClient *redisstore.Client,
	producer *messaging.Producer,
	queries *story.QueryService,
	progress *redisstore.ProgressStore,
	limiter *redisstore.RateLimiter,
) *http.Server {
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		if err := pgClient.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "postgres": err.Error()})
			return
		}
		if err := redisClient.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "redis": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.Observability.Metrics.Enabled {
		path := cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(promhttp.Handler()))
	}

	v1 := router.Group("/v1")
	{
		v1.POST("/stories", rateLimitMiddleware(limiter, cfg.Server.RateLimit), func(c *gin.Context) {
			var req struct {
				Theme           string   `json:"theme" binding:"required"`
				DurationMinutes int      `json:"duration_minutes" binding:"required"`
				Language        string   `json:"language"`
				VoiceOption     string   `json:"voice_option"`
				TranslateTo     []string `json:"translate_to"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"code": appErrors.CodeInvalidRequest, "message": err.Error()})
				return
			}

			storyReq := entity.StoryRequest{
				ID:              uuid.NewString(),
				Theme:           req.Theme,
				DurationMinutes: req.DurationMinutes,
				Language:        req.Language,
				VoiceOption:     req.VoiceOption,
				TranslateTo:     req.TranslateTo,
			}
			job := &messaging.StoryGenerationJobMessage{
				JobID:   uuid.NewString(),
				Request: storyReq,
			}
			if _, err := producer.PublishStoryJob(c.Request.Context(), job); err != nil {
				writeError(c, appErrors.ErrMessagingError.WithError(err))
				return
			}
			c.JSON(http.StatusAccepted, gin.H{"story_id": storyReq.ID, "job_id": job.JobID})
		})

		v1.GET("/stories", func(c *gin.Context) {
			page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
			pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
			result, err := queries.ListStories(c.Request.Context(), page, pageSize)
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, result)
		})

		v1.GET("/stories/:id", func(c *gin.Context) {
			artifact, err := queries.GetStory(c.Request.Context(), c.Param("id"))
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, artifact)
		})

		v1.GET("/stories/:id/progress", func(c *gin.Context) {
			update, err := progress.Get(c.Request.Context(), c.Param("id"))
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, update)
		})
	}

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}
}

// rateLimitMiddleware 按客户端 IP 限制故事提交频率。
// Redis 不可用时放行，限流失效好过提交面整体不可用。
func rateLimitMiddleware(limiter *redisstore.RateLimiter, cfg config.RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || cfg.Limit <= 0 || cfg.Window <= 0 {
			c.Next()
			return
		}
		key := redisstore.SubmitRateLimitKey(c.ClientIP())
		allowed, err := limiter.Allow(c.Request.Context(), key, cfg.Limit, cfg.Window)
		if err != nil {
			logger.Warn(c.Request.Context(), "rate limiter unavailable, allowing request", "error", err.Error())
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    appErrors.CodeInvalidRequest,
				"message": "too many story submissions, slow down",
			})
			return
		}
		c.Next()
	}
}

func writeError(c *gin.Context, err error) {
	appErr := appErrors.AsAppError(err)
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"code": appErr.Code, "message": appErr.Message, "detail": appErr.Detail})
}

func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
