package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bluemoon-apartment/bluemoon-backend/internal/activity"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/api"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/auth"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/logger"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	shutdownTimeout = 10 * time.Second
	drainTimeout    = 5 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *deps) error {
				return serve(cmd.Context(), d)
			})
		},
	}
}

func serve(ctx context.Context, d *deps) error {
	cfg := d.Config
	logger.Info("BlueMoon 后端服务启动中...", zap.String("version", version))

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	utils.InitValidator()

	recorder := activity.NewRecorder(d.Store, cfg.Activity.Workers, cfg.Activity.QueueSize)

	router := api.SetupRouter(api.Dependencies{
		Config:    cfg,
		DB:        d.DB,
		Profiles:  auth.NewGormProfileResolver(d.DB),
		Store:     d.Store,
		Recorder:  recorder,
		Retention: d.Retention,
	})

	// 创建HTTP服务器
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.App.GetReadTimeout(),
		WriteTimeout: cfg.App.GetWriteTimeout(),
		IdleTimeout:  cfg.App.GetIdleTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP服务器启动成功", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// 等待退出信号
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			_ = recorder.Stop(drainTimeout)
			return fmt.Errorf("HTTP服务器启动失败: %w", err)
		}
	}
	logger.Info("正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// 先停止接收请求，再写完队列中的操作日志
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}
	if err := recorder.Stop(drainTimeout); err != nil {
		logger.Error("操作日志未能全部写入", zap.Error(err))
	}

	logger.Info("服务器已安全关闭")
	return nil
}
