package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/threading"
	"go.uber.org/zap"

	"github.com/DarkHorse0725/NFT-marketplace/logger/xzap"
	"github.com/DarkHorse0725/NFT-marketplace/service"
	"github.com/DarkHorse0725/NFT-marketplace/service/config"
)

var errPanic = errors.New("command panicked")

// runWithSignal 在独立 goroutine 中执行 fn，收到 SIGINT / SIGTERM 时取消 ctx 并等待 fn 返回
func runWithSignal(parent context.Context, fn func(ctx context.Context) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	done := make(chan error, 1)
	threading.GoSafe(func() {
		err := errPanic // fn 发生 panic 时 GoSafe 会恢复，这里保证仍然有结果
		defer func() { done <- err }()
		err = fn(ctx)
	})

	onSignal := make(chan os.Signal, 1)
	signal.Notify(onSignal, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(onSignal)

	select {
	case sig := <-onSignal:
		cancel()
		xzap.WithContext(ctx).Info("Exit by signal", zap.String("signal", sig.String()))
		// 等待当前交易的等待逻辑感知到 ctx 取消
		if err := <-done; err != nil {
			return errors.Wrapf(err, "interrupted by %s", sig)
		}
		return errors.Errorf("interrupted by %s", sig)
	case err := <-done:
		if err != nil {
			xzap.WithContext(ctx).Error("Exit by error", zap.Error(err))
		}
		return err
	}
}

// loadConfig 解析配置并初始化日志
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.UnmarshalCmdConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if _, err := xzap.SetUp(*cfg.Log); err != nil {
		return nil, errors.Wrap(err, "failed to set up logger")
	}
	xzap.WithContext(ctx).Info("moondeploy start", zap.String("network", network), zap.Any("config", cfg))
	return cfg, nil
}

// withService 加载配置并连接目标网络后执行 fn
func withService(ctx context.Context, fn func(s *service.Service) error) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	s, err := service.New(ctx, cfg, network)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}
