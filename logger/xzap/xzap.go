package xzap

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	logging "github.com/DarkHorse0725/NFT-marketplace/logger"
)

type ctxFieldsKey struct{}

var global atomic.Pointer[zap.Logger]

func init() {
	// SetUp 之前也能输出日志 (例如配置文件解析失败)
	l, _ := zap.NewDevelopment()
	global.Store(l)
}

// SetUp 根据配置初始化全局 logger
func SetUp(c logging.LogConf) (*zap.Logger, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if c.Encoding == "plain" {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	var sink zapcore.WriteSyncer
	switch c.Mode {
	case "", logging.ModeConsole:
		sink = zapcore.Lock(os.Stdout)
	case logging.ModeFile:
		if c.Path == "" {
			return nil, errors.New("log path is required in file mode")
		}
		name := c.ServiceName
		if name == "" {
			name = "moondeploy"
		}
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(c.Path, name+".log"),
			MaxSize:    c.MaxSize,
			MaxAge:     c.KeepDays,
			MaxBackups: c.MaxBackups,
			Compress:   c.Compress,
		})
	default:
		return nil, errors.Errorf("unsupported log mode %q", c.Mode)
	}

	l := zap.New(zapcore.NewCore(encoder, sink, c.ZapLevel()), zap.AddCaller())
	if c.ServiceName != "" {
		l = l.With(zap.String("service", c.ServiceName))
	}
	global.Store(l)
	return l, nil
}

// NewContext 把日志字段挂到 ctx 上，之后 WithContext 取出的 logger 会带上这些字段
func NewContext(ctx context.Context, fields ...zap.Field) context.Context {
	prev, _ := ctx.Value(ctxFieldsKey{}).([]zap.Field)
	merged := make([]zap.Field, 0, len(prev)+len(fields))
	merged = append(merged, prev...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, ctxFieldsKey{}, merged)
}

// WithContext 返回带有 ctx 字段的全局 logger
func WithContext(ctx context.Context) *zap.Logger {
	l := global.Load()
	if ctx == nil {
		return l
	}
	if fields, ok := ctx.Value(ctxFieldsKey{}).([]zap.Field); ok && len(fields) > 0 {
		return l.With(fields...)
	}
	return l
}

// Sync 刷新缓冲区，进程退出前调用
func Sync() {
	_ = global.Load().Sync()
}
