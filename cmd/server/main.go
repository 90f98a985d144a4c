package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/govee-lab/govee-bridge/internal/api"
	"github.com/govee-lab/govee-bridge/internal/api/middleware"
	"github.com/govee-lab/govee-bridge/internal/cloudapi"
	cfgpkg "github.com/govee-lab/govee-bridge/internal/config"
	"github.com/govee-lab/govee-bridge/internal/control"
	"github.com/govee-lab/govee-bridge/internal/health"
	"github.com/govee-lab/govee-bridge/internal/httpserver"
	"github.com/govee-lab/govee-bridge/internal/iotmqtt"
	"github.com/govee-lab/govee-bridge/internal/logging"
	"github.com/govee-lab/govee-bridge/internal/metrics"
	"github.com/govee-lab/govee-bridge/internal/scenes"
)

func main() {
	// 1) 加载配置
	cfg, err := cfgpkg.Load("")
	if err != nil {
		panic(err)
	}

	// 2) 初始化日志
	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	log := zap.L()

	// 3) 指标注册与处理器
	reg := metrics.NewRegistry()
	appMetrics := metrics.NewAppMetrics(reg)
	metricsHandler := metrics.Handler(reg)

	// 4) 场景目录缓存：Redis优先，失败回退到进程内缓存
	var cache scenes.Cache
	var redisCache *scenes.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = scenes.NewRedisCache(cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, falling back to memory cache", zap.Error(err))
		} else {
			cache = redisCache
		}
	}
	if cache == nil {
		cache = scenes.NewMemoryCache()
	}

	// 5) OpenAPI 客户端（未配置API Key时云端接口不可用）
	var cloud *cloudapi.Client
	if cfg.Cloud.APIKey != "" {
		cloud, err = cloudapi.NewClient(cfg.Cloud, appMetrics, log)
		if err != nil {
			log.Fatal("cloud client init error", zap.Error(err))
		}
	} else {
		log.Warn("cloud api key not set, device/scene endpoints disabled")
	}

	// 6) 本地灯效表（可选）
	var catalog *scenes.EffectCatalog
	if cfg.Scenes.EffectCatalog != "" {
		catalog, err = scenes.LoadEffectCatalog(cfg.Scenes.EffectCatalog)
		if err != nil {
			log.Warn("effect catalog not loaded", zap.String("path", cfg.Scenes.EffectCatalog), zap.Error(err))
		}
	}

	library := scenes.NewLibrary(cloud, cache, cfg.Redis.CacheTTL, catalog, appMetrics, log)

	// 7) AWS IoT 透传通道（可选）
	var publisher *iotmqtt.Publisher
	if cfg.IoT.Enabled {
		creds, err := loadIoTCredentials(cfg.IoT, log)
		if err != nil {
			log.Fatal("iot credentials error", zap.Error(err))
		}
		publisher, err = iotmqtt.NewPublisher(cfg.IoT, creds, appMetrics, log)
		if err != nil {
			log.Fatal("iot mqtt connect error", zap.Error(err))
		}
		defer publisher.Close()

		if creds.AccountTopic != "" {
			if err := publisher.SubscribeState(creds.AccountTopic, func(payload []byte) {
				log.Debug("account topic message", zap.Int("bytes", len(payload)))
			}); err != nil {
				log.Warn("account topic subscribe failed", zap.Error(err))
			}
		}
	}

	// 8) 健康检查聚合
	aggregator := health.NewAggregator()
	if redisCache != nil {
		aggregator.AddChecker(health.NewCacheChecker(redisCache))
	}
	if publisher != nil {
		aggregator.AddChecker(health.NewMQTTChecker(publisher))
	}

	// 9) HTTP 服务与路由
	httpSrv := httpserver.New(cfg.HTTP, cfg.Metrics.Path, metricsHandler, func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return aggregator.Ready(ctx)
	})
	health.RegisterHTTPRoutes(httpSrv.Engine(), aggregator)

	var deviceHandler *api.DeviceHandler
	if cloud != nil {
		deviceHandler = api.NewDeviceHandler(cloud, library, log)
	}
	var controlSvc *control.Service
	if publisher != nil {
		controlSvc = control.NewService(publisher, library, appMetrics, log)
	}
	authCfg := middleware.AuthConfig{Enabled: cfg.HTTP.AuthEnabled, APIKeys: cfg.HTTP.APIKeys}
	api.RegisterRoutes(httpSrv.Engine(), deviceHandler, api.NewControlHandler(controlSvc, log), authCfg, log)

	go func() {
		if err := httpSrv.Start(); err != nil {
			log.Error("http server error", zap.Error(err))
		}
	}()
	log.Info("govee-bridge started", zap.String("addr", cfg.HTTP.Addr))

	// 信号处理，优雅关闭
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
	if redisCache != nil {
		_ = redisCache.Close()
	}
}

// loadIoTCredentials 获取IoT连接凭证
// 配置了PEM文件路径时直接读取，否则用账号密码登录换取
func loadIoTCredentials(cfg cfgpkg.IoTConfig, log *zap.Logger) (*cloudapi.IoTCredentials, error) {
	if cfg.CertFile != "" && cfg.KeyFile != "" {
		certPEM, err := os.ReadFile(cfg.CertFile)
		if err != nil {
			return nil, err
		}
		keyPEM, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return nil, err
		}
		log.Info("iot credentials loaded from files")
		return &cloudapi.IoTCredentials{
			Endpoint: cfg.Endpoint,
			ClientID: defaultClientID(cfg.ClientID),
			CertPEM:  string(certPEM),
			KeyPEM:   string(keyPEM),
		}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	creds, err := cloudapi.NewAuthClient().Login(ctx, cfg.Email, cfg.Password, cfg.ClientID)
	if err != nil {
		return nil, err
	}
	log.Info("iot credentials obtained via account login",
		zap.String("endpoint", creds.Endpoint))
	return creds, nil
}

func defaultClientID(id string) string {
	if id != "" {
		return id
	}
	return "govee-bridge-" + time.Now().Format("20060102150405")
}
