package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	logging "github.com/DarkHorse0725/NFT-marketplace/logger"
)

const (
	// HardhatNetwork 进程内模拟链，相当于 Hardhat 的默认网络
	HardhatNetwork = "hardhat"
	HardhatChainID = 1337

	DefaultArtifactsDir = "./artifacts"
	DefaultRegistryDir  = "./deployments"

	// 与原 hardhat.config.js 保持一致: 600000000 ms
	DefaultTimeoutMs = 600000000
)

var ErrUnknownNetwork = errors.New("unknown network")

// Config 定义了部署工具的全局配置结构
type Config struct {
	Log       *logging.LogConf    `toml:"log" mapstructure:"log" json:"log"`                   // 日志配置
	Networks  map[string]*Network `toml:"networks" mapstructure:"networks" json:"networks"`    // 网络配置，key 为网络名
	Etherscan EtherscanCfg        `toml:"etherscan" mapstructure:"etherscan" json:"etherscan"` // 区块浏览器 API Key
	Artifacts string              `toml:"artifacts" mapstructure:"artifacts" json:"artifacts"` // Hardhat 编译产物目录
	Deploy    DeployCfg           `toml:"deploy" mapstructure:"deploy" json:"deploy"`          // 部署计划
	Scenario  ScenarioCfg         `toml:"scenario" mapstructure:"scenario" json:"scenario"`    // 市场/拍卖流程
	Registry  RegistryCfg         `toml:"registry" mapstructure:"registry" json:"registry"`    // 部署记录存储
}

// Network 单个网络的连接信息
type Network struct {
	URL      string   `toml:"url" mapstructure:"url" json:"url"`                // RPC 节点地址，支持 ${VAR}
	ChainID  int64    `toml:"chain_id" mapstructure:"chain_id" json:"chain_id"` // Chain ID
	Accounts []string `toml:"accounts" mapstructure:"accounts" json:"-"`        // 签名私钥列表，支持 ${VAR}
	Timeout  int64    `toml:"timeout" mapstructure:"timeout" json:"timeout"`    // 单次 RPC 请求超时 (毫秒)
	Explorer string   `toml:"explorer" mapstructure:"explorer" json:"explorer"` // etherscan.api_key 中对应的 key
}

// EtherscanCfg 区块浏览器配置，验证步骤由外部工具完成
type EtherscanCfg struct {
	APIKey map[string]string `toml:"api_key" mapstructure:"api_key" json:"-"`
}

// DeployCfg 部署计划，按顺序执行
type DeployCfg struct {
	Contracts []DeploySpec `toml:"contracts" mapstructure:"contracts" json:"contracts" validate:"dive"`
}

// DeploySpec 一次合约部署
type DeploySpec struct {
	Name  string   `toml:"name" mapstructure:"name" json:"name" validate:"required"` // 合约名 (artifact 名称)
	Alias string   `toml:"alias" mapstructure:"alias" json:"alias"`                  // 引用名，默认与 Name 相同
	Args  []string `toml:"args" mapstructure:"args" json:"args"`                     // 构造参数，按位置排列
}

// ScenarioCfg 自定义流程，为空时使用内置的市场/拍卖流程
type ScenarioCfg struct {
	Steps []StepSpec `toml:"steps" mapstructure:"steps" json:"steps" validate:"dive"`
}

// StepSpec 流程中的一步
type StepSpec struct {
	Kind     string   `toml:"kind" mapstructure:"kind" json:"kind" validate:"required,oneof=deploy call send"`
	From     string   `toml:"from" mapstructure:"from" json:"from"`                                              // 签名者名称 (owner / other)
	Contract string   `toml:"contract" mapstructure:"contract" json:"contract" validate:"required"`              // deploy 时为合约名，其余为别名
	Alias    string   `toml:"alias" mapstructure:"alias" json:"alias"`                                           // deploy 的别名
	Method   string   `toml:"method" mapstructure:"method" json:"method" validate:"required_unless=Kind deploy"` // call / send 的方法名
	Args     []string `toml:"args" mapstructure:"args" json:"args"`
	Save     string   `toml:"save" mapstructure:"save" json:"save"` // call 结果保存到的变量名
}

// RegistryCfg 部署记录存储配置，配置了 DB 时同时写入 MySQL
type RegistryCfg struct {
	Dir string  `toml:"dir" mapstructure:"dir" json:"dir"`
	DB  *DBConf `toml:"db" mapstructure:"db" json:"db"`
}

// DBConf MySQL 连接配置
type DBConf struct {
	User         string `toml:"user" mapstructure:"user" json:"user"`
	Password     string `toml:"password" mapstructure:"password" json:"-"`
	Host         string `toml:"host" mapstructure:"host" json:"host"`
	Port         int    `toml:"port" mapstructure:"port" json:"port"`
	Database     string `toml:"database" mapstructure:"database" json:"database"`
	MaxIdleConns int    `toml:"max_idle_conns" mapstructure:"max_idle_conns" json:"max_idle_conns"`
	MaxOpenConns int    `toml:"max_open_conns" mapstructure:"max_open_conns" json:"max_open_conns"`
}

// DSN 拼接 go-sql-driver 格式的连接串
func (c *DBConf) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// RequestTimeout 单次请求超时，0 表示不限制
func (n *Network) RequestTimeout() time.Duration {
	if n.Timeout <= 0 {
		return 0
	}
	return time.Duration(n.Timeout) * time.Millisecond
}

// DefaultNetworks 原项目中的三条网络
func DefaultNetworks() map[string]*Network {
	return map[string]*Network{
		"mumbai": {
			URL:      "${MUMBAI_RPC_URI}",
			ChainID:  80001,
			Accounts: []string{"${PRIVATE_KEY}"},
			Timeout:  DefaultTimeoutMs,
			Explorer: "polygonMumbai",
		},
		"polygon": {
			URL:      "${POLYGON_RPC_URI}",
			ChainID:  137,
			Accounts: []string{"${PRIVATE_KEY}"},
			Timeout:  DefaultTimeoutMs,
			Explorer: "polygon",
		},
		"goerli": {
			URL:      "${GOERLI_RPC_URI}",
			ChainID:  5,
			Accounts: []string{"${PRIVATE_KEY}"},
			Timeout:  DefaultTimeoutMs,
			Explorer: "goerli",
		},
	}
}

// DefaultExplorerKeys 原项目中的 etherscan API Key
func DefaultExplorerKeys() map[string]string {
	return map[string]string{
		"polygonMumbai": "ASNHJSJ14R6WMRISZJ5UMJ3B9PBHIWRM8J",
		"polygon":       "ASNHJSJ14R6WMRISZJ5UMJ3B9PBHIWRM8J",
		"goerli":        "4TYZB3WZ95XFV7C73NP76PQ3GPGXJ6ZYYH",
	}
}

// DefaultDeployPlan 原部署脚本中实际执行的那一次部署
func DefaultDeployPlan() []DeploySpec {
	return []DeploySpec{{
		Name: "SaleClockAuction",
		Args: []string{
			"0xA46E5F6c4bA286e2bC234f2dd504f7d3D7418981",
			"0x0d500b1d8e8ef31e21c99d1db9a6444d3adf1270",
			"0x0273d016067e74b0093A17503af05C5a88Ee5f8F",
			"500",
		},
	}}
}

// Load 使用独立的 viper 实例加载并解析指定路径的配置文件
func Load(configFilePath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configFilePath)
	v.SetConfigType("toml")
	BindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed on read config %s", configFilePath)
	}
	return decode(v)
}

// Default 不读取任何文件的默认配置
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// UnmarshalCmdConfig 使用 cobra 初始化时设置好的 viper 实例解析配置
func UnmarshalCmdConfig() (*Config, error) {
	return ReadConfig(viper.GetViper())
}

// ReadConfig 读取 v 上设置的配置文件并解析
// 只有按目录搜索不到配置文件时才使用默认配置，显式指定的文件不存在会返回错误
func ReadConfig(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "failed on read config")
		}
	}
	return decode(v)
}

// BindEnv 允许用 MOON_ 前缀的环境变量覆盖配置项
func BindEnv(v *viper.Viper) {
	v.AutomaticEnv()
	v.SetEnvPrefix("MOON") // 如 MOON_ARTIFACTS
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

func decode(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "failed on unmarshal config")
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Log == nil {
		c.Log = &logging.LogConf{ServiceName: "moondeploy", Mode: logging.ModeConsole, Level: "info"}
	}
	if c.Artifacts == "" {
		c.Artifacts = DefaultArtifactsDir
	}
	if c.Registry.Dir == "" {
		c.Registry.Dir = DefaultRegistryDir
	}

	// viper 会把 key 转成小写，这里统一小写后再合并默认值
	networks := make(map[string]*Network, len(c.Networks))
	for name, n := range c.Networks {
		if n != nil {
			networks[strings.ToLower(name)] = n
		}
	}
	for name, def := range DefaultNetworks() {
		n, ok := networks[name]
		if !ok {
			networks[name] = def
			continue
		}
		n.mergeDefaults(def)
	}
	c.Networks = networks

	keys := make(map[string]string)
	for name, key := range DefaultExplorerKeys() {
		keys[strings.ToLower(name)] = key
	}
	for name, key := range c.Etherscan.APIKey {
		keys[strings.ToLower(name)] = key
	}
	c.Etherscan.APIKey = keys

	if len(c.Deploy.Contracts) == 0 {
		c.Deploy.Contracts = DefaultDeployPlan()
	}
}

// mergeDefaults 用同名默认网络补齐未配置的字段
func (n *Network) mergeDefaults(def *Network) {
	if n.URL == "" {
		n.URL = def.URL
	}
	if n.ChainID == 0 {
		n.ChainID = def.ChainID
	}
	if len(n.Accounts) == 0 {
		n.Accounts = def.Accounts
	}
	if n.Timeout == 0 {
		n.Timeout = def.Timeout
	}
	if n.Explorer == "" {
		n.Explorer = def.Explorer
	}
}

// Validate 只校验部署计划与流程的结构，网络地址与私钥在使用时才会报错
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c.Deploy); err != nil {
		return errors.Wrap(err, "invalid deploy plan")
	}
	if err := validate.Struct(c.Scenario); err != nil {
		return errors.Wrap(err, "invalid scenario")
	}
	return nil
}

// Network 按名称查找网络，并展开其中的环境变量
func (c *Config) Network(name string) (*Network, error) {
	name = strings.ToLower(name)
	if name == HardhatNetwork {
		return &Network{ChainID: HardhatChainID}, nil
	}
	n, ok := c.Networks[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownNetwork, "network %q", name)
	}
	resolved := &Network{
		URL:      os.ExpandEnv(n.URL),
		ChainID:  n.ChainID,
		Timeout:  n.Timeout,
		Explorer: n.Explorer,
	}
	for _, acc := range n.Accounts {
		resolved.Accounts = append(resolved.Accounts, os.ExpandEnv(acc))
	}
	return resolved, nil
}

// ExplorerKey 返回网络对应的区块浏览器 API Key
func (c *Config) ExplorerKey(network string) (string, bool) {
	n, ok := c.Networks[strings.ToLower(network)]
	if !ok || n.Explorer == "" {
		return "", false
	}
	key, ok := c.Etherscan.APIKey[strings.ToLower(n.Explorer)]
	return key, ok
}

// NetworkNames 网络名列表 (不含 hardhat)
func (c *Config) NetworkNames() []string {
	names := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
