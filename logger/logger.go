package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

const (
	ModeConsole = "console" // 输出到标准输出
	ModeFile    = "file"    // 输出到文件 (按大小滚动)
)

// LogConf 日志配置
type LogConf struct {
	ServiceName string `toml:"service_name" mapstructure:"service_name" json:"service_name"` // 服务名称，写入每条日志
	Mode        string `toml:"mode" mapstructure:"mode" json:"mode"`                         // 输出模式: console / file
	Encoding    string `toml:"encoding" mapstructure:"encoding" json:"encoding"`             // 编码: json / plain
	Path        string `toml:"path" mapstructure:"path" json:"path"`                         // 日志目录 (file 模式)
	Level       string `toml:"level" mapstructure:"level" json:"level"`                      // 日志级别: debug / info / warn / error
	Compress    bool   `toml:"compress" mapstructure:"compress" json:"compress"`             // 滚动后是否压缩
	KeepDays    int    `toml:"keep_days" mapstructure:"keep_days" json:"keep_days"`          // 保留天数
	MaxSize     int    `toml:"max_size" mapstructure:"max_size" json:"max_size"`             // 单个文件最大 MB
	MaxBackups  int    `toml:"max_backups" mapstructure:"max_backups" json:"max_backups"`    // 最多保留的文件个数
}

// ZapLevel 将配置中的级别字符串转换为 zap 级别，无法识别时使用 info
func (c LogConf) ZapLevel() zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(c.Level))); err != nil {
		return zapcore.InfoLevel
	}
	return level
}
