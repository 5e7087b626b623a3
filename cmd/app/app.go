package main

import (
	"context"
	"errors"
	"keyhub/config"
	"keyhub/internal/cron"
	"keyhub/internal/service"
	"keyhub/internal/telemetry"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RuntimeInfo struct {
	Env       string    `json:"env"`
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	GoVersion string    `json:"go_version"`
	StartAt   time.Time `json:"start_at"`
}

type App struct {
	conf          *config.Configuration
	logger        *zap.Logger
	cronSrv       *cron.Cron
	httpSrv       *http.Server
	trace         *telemetry.Trace
	policy        *service.ConfigProvider
	healthService *service.HealthService

	appInfo RuntimeInfo
}

func newHttpServer(
	conf *config.Configuration,
	router *gin.Engine,
) *http.Server {
	return &http.Server{
		Addr:              ":" + strconv.FormatUint(uint64(conf.App.Port), 10),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func newApp(
	conf *config.Configuration,
	logger *zap.Logger,
	httpSrv *http.Server,
	trace *telemetry.Trace,
	policy *service.ConfigProvider,
	healthService *service.HealthService,
	cronSrv *cron.Cron,
) *App {
	return &App{
		conf:          conf,
		logger:        logger,
		httpSrv:       httpSrv,
		trace:         trace,
		policy:        policy,
		healthService: healthService,
		cronSrv:       cronSrv,
		appInfo: RuntimeInfo{
			Env:       conf.App.Env,
			Name:      conf.App.Name,
			Version:   conf.App.Version,
			GoVersion: runtime.Version(),
			StartAt:   time.Now(),
		},
	}
}

func (a *App) Run() error {
	info := a.appInfo
	a.logger.Info("app runtime info",
		zap.String("env", info.Env),
		zap.String("name", info.Name),
		zap.String("version", info.Version),
		zap.String("go_version", info.GoVersion),
		zap.Time("start_at", info.StartAt),
	)

	// 先載入一次 key policy；失敗時沿用預設值，不阻擋啟動
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if policy, err := a.policy.Refresh(ctx); err != nil {
		a.logger.Warn("initial key policy load failed, using defaults", zap.Error(err))
	} else {
		a.logger.Info("key policy loaded", zap.String("source", policy.Source))
	}

	if err := a.cronSrv.Run(); err != nil {
		return err
	}
	a.logger.Info("cron server started")

	go func() {
		a.logger.Info("http server listening", zap.String("addr", a.httpSrv.Addr))
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server stopped unexpectedly", zap.Error(err))
			a.healthService.SetReady(false)
		}
	}()
	a.healthService.SetReady(true)

	return nil
}

// Stop 先關閉 readiness 再依序停止 http、cron 與 tracer
func (a *App) Stop(ctx context.Context) error {
	a.healthService.SetReady(false)

	var errs []error
	if err := a.httpSrv.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	a.logger.Info("http server has been stop")

	if err := a.cronSrv.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	a.logger.Info("cron server has been stop")

	if err := a.trace.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
