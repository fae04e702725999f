// Storefront 主程序
// 功能：对外提供 GraphQL 店铺接口（商品目录、购物车、下单、用户与认证）
// 架构：基于 DDD 分层，HTTP(gin) 承载 GraphQL 与 REST 认证接口，gRPC 提供健康检查，事件经 Outbox 投递至 Kafka
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	authhttp "github.com/wyfcoding/storefront/internal/auth/interfaces/http"
	gatewayapp "github.com/wyfcoding/storefront/internal/gateway/application"
	"github.com/wyfcoding/storefront/internal/gateway/interfaces/graphql"
	"github.com/wyfcoding/storefront/pkg/cache"
	"github.com/wyfcoding/storefront/pkg/config"
	"github.com/wyfcoding/storefront/pkg/db"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"github.com/wyfcoding/storefront/pkg/middleware"
	"github.com/wyfcoding/storefront/pkg/mq"
	"github.com/wyfcoding/storefront/pkg/outbox"
	"github.com/wyfcoding/storefront/pkg/ratelimit"
	"github.com/wyfcoding/storefront/pkg/trace"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/storefront/config.toml", "path to config file")
	flag.Parse()

	os.Exit(run(configPath))
}

// run 启动并阻塞至退出，返回进程退出码；deferred 清理在返回前执行
func run(configPath string) int {
	// 1. 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	// 2. 初始化日志
	loggerCfg := logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}
	if err := logger.Init(loggerCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting Storefront",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)

	// 3. 初始化追踪
	if cfg.Tracing.Enabled {
		shutdown, err := trace.InitTracer(cfg.ServiceName, cfg.Tracing.CollectorEndpoint, cfg.Tracing.SamplingRate)
		if err != nil {
			logger.Error(ctx, "Failed to initialize tracer", "error", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error(ctx, "Failed to shutdown tracer", "error", err)
				}
			}()
			logger.Info(ctx, "Tracer initialized", "endpoint", cfg.Tracing.CollectorEndpoint)
		}
	}

	// 4. 初始化数据库
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
		Tracing:            cfg.Tracing.Enabled,
	})
	if err != nil {
		logger.Error(ctx, "Failed to initialize database", "error", err)
		return 1
	}
	defer database.Close()

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(ctx, gatewayapp.Models()...); err != nil {
			logger.Error(ctx, "Failed to migrate database", "error", err)
			return 1
		}
	}

	// 5. 初始化 Redis，未启用时关闭商品缓存、令牌吊销与限流
	var (
		redisCache  *cache.RedisCache
		rateLimiter ratelimit.RateLimiter
	)
	if cfg.Redis.Enabled {
		redisCache, err = cache.New(cache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ConnTimeout:  cfg.Redis.ConnTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			logger.Error(ctx, "Failed to initialize Redis", "error", err)
			return 1
		}
		defer redisCache.Close()
		rateLimiter = ratelimit.NewRedisRateLimiter(redisCache.GetClient())
	}

	// 6. 初始化指标
	metricsInstance := metrics.New(cfg.ServiceName)
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		if err := metricsInstance.Register(registry); err != nil {
			logger.Error(ctx, "Failed to register metrics", "error", err)
			return 1
		}
		metricsServer = metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)
	}

	// 7. 初始化应用服务
	services := gatewayapp.NewServices(gatewayapp.Options{
		DB:         database,
		Cache:      redisCache,
		Auth:       cfg.Auth,
		ProductTTL: time.Duration(cfg.Redis.ProductTTL) * time.Second,
		Isolation:  cfg.Order.Isolation,
		Metrics:    metricsInstance,
	})

	schema, err := graphql.NewSchema(graphql.NewResolver(
		services.Auth, services.Users, services.Catalog, services.Cart, services.Orders,
	))
	if err != nil {
		logger.Error(ctx, "Failed to parse GraphQL schema", "error", err)
		return 1
	}

	// 8. 创建服务器
	httpServer := createHTTPServer(cfg, services, graphql.NewHandler(schema), rateLimiter, metricsInstance)
	grpcServer, healthServer := createGRPCServer(cfg, metricsInstance)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info(gctx, "Starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		listener, err := net.Listen("tcp", cfg.GRPC.Addr())
		if err != nil {
			return fmt.Errorf("listen grpc: %w", err)
		}
		logger.Info(gctx, "Starting gRPC server", "addr", cfg.GRPC.Addr())
		return grpcServer.Serve(listener)
	})

	// 9. 事件投递
	if len(cfg.Kafka.Brokers) > 0 {
		producer := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		defer producer.Close()

		relay := outbox.NewRelay(services.Outbox, producer, outbox.RelayConfig{
			PollInterval: time.Duration(cfg.Outbox.PollInterval) * time.Millisecond,
			BatchSize:    cfg.Outbox.BatchSize,
			MaxAttempts:  cfg.Outbox.MaxAttempts,
		})
		g.Go(func() error { return relay.Run(gctx) })
	} else {
		logger.Warn(ctx, "Kafka brokers not configured, outbox events stay pending")
	}

	// 10. 优雅关停
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(context.Background(), "Shutting down Storefront")
		healthServer.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, "HTTP server shutdown error", "error", err)
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error(shutdownCtx, "Metrics server shutdown error", "error", err)
			}
		}
		grpcServer.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error(context.Background(), "Storefront exited with error", "error", err)
		return 1
	}
	logger.Info(context.Background(), "Storefront stopped")
	return 0
}

// createHTTPServer 创建 HTTP 服务器
func createHTTPServer(cfg *config.Config, services *gatewayapp.Services, gql *graphql.Handler, limiter ratelimit.RateLimiter, m *metrics.Metrics) *http.Server {
	router := gin.New()

	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinMetricsMiddleware(m))
	router.Use(middleware.RateLimitMiddleware(limiter, cfg.RateLimit))

	gql.RegisterRoutes(router, services.Auth)
	authhttp.NewHandler(services.Auth).RegisterRoutes(router.Group("/api"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})

	return &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
}

// createGRPCServer 创建 gRPC 服务器，仅承载健康检查与反射
func createGRPCServer(cfg *config.Config, m *metrics.Metrics) (*grpc.Server, *health.Server) {
	opts := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			middleware.GRPCLoggingInterceptor(m),
			middleware.GRPCRecoveryInterceptor(),
			middleware.GRPCErrorInterceptor(),
		),
	}
	if cfg.GRPC.MaxConcurrentStreams > 0 {
		opts = append(opts, grpc.MaxConcurrentStreams(uint32(cfg.GRPC.MaxConcurrentStreams)))
	}

	server := grpc.NewServer(opts...)
	healthServer := health.NewServer()
	healthServer.SetServingStatus(cfg.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)
	reflection.Register(server)

	return server, healthServer
}
