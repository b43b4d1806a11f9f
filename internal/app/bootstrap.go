package app

import (
	"errors"
	"net"
	"time"

	"github.com/aurelia-jewelry/internal/config"
	"github.com/aurelia-jewelry/internal/models"
	"github.com/aurelia-jewelry/internal/provider"
	"github.com/aurelia-jewelry/internal/router"
	"github.com/aurelia-jewelry/internal/worker"
)

// BuildRunner 构建服务运行器，依赖 models.DB 已完成初始化
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if models.DB == nil {
		return nil, errors.New("database not initialized")
	}

	container, err := provider.NewContainer(cfg, models.DB)
	if err != nil {
		return nil, err
	}

	var services []Service

	// 初始化 HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		httpService := NewHTTPService(listenAddr(cfg), engine, HTTPTimeouts{
			Read:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
			Write: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		})
		services = append(services, httpService)
	}

	// 初始化 Worker 服务；队列未启用时 all 模式只跑 HTTP
	if mode == ModeWorker || (mode == ModeAll && cfg.Queue.Enabled) {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		if err != nil {
			_ = container.Close()
			return nil, err
		}
		services = append(services, workerService)
	}

	if len(services) == 0 {
		_ = container.Close()
		return nil, errors.New("no services initialized (check mode and config)")
	}

	runner := NewRunner(services...)
	runner.AddCleanup(container.Close)
	return runner, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start", "addr", listenAddr(opts.Config), "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}

func listenAddr(cfg *config.Config) string {
	return net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
}
