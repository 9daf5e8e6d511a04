package cmd

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/DarkHorse0725/NFT-marketplace/logger/xzap"
	"github.com/DarkHorse0725/NFT-marketplace/service/config"
)

var (
	cfgFile string // 配置文件路径
	envFile string // .env 文件路径
	network string // 目标网络
)

// rootCmd 所有子命令的根命令
var rootCmd = &cobra.Command{
	Use:           "moondeploy",
	Short:         "deploy and exercise the moon marketplace contracts.",
	Long:          "deploy the moon marketplace contracts to hardhat, mumbai, polygon or goerli, and run the marketplace/auction flow.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute 解析命令行参数并执行对应的子命令，出错时以状态码 1 退出
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		xzap.WithContext(rootCmd.Context()).Error("command failed", zap.Error(err))
		xzap.Sync()
		os.Exit(1)
	}
	xzap.Sync()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config/config.toml or $HOME/.moondeploy.toml)")
	flags.StringVarP(&network, "network", "n", config.HardhatNetwork, "target network: hardhat, mumbai, polygon, goerli")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file with RPC urls and PRIVATE_KEY")
	flags.String("artifacts", config.DefaultArtifactsDir, "hardhat artifacts directory")
	_ = viper.BindPFlag("artifacts", flags.Lookup("artifacts"))
}

// initConfig 读取 .env 与配置文件
func initConfig() {
	if err := config.LoadDotEnv(envFile); err != nil {
		xzap.WithContext(rootCmd.Context()).Warn("failed on load env file", zap.String("file", envFile), zap.Error(err))
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if _, err := os.Stat(filepath.Join("config", "config.toml")); err == nil {
		viper.SetConfigFile(filepath.Join("config", "config.toml"))
	} else {
		home, err := homedir.Dir()
		if err != nil {
			xzap.WithContext(rootCmd.Context()).Warn("failed on find home dir", zap.Error(err))
			return
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".moondeploy")
	}
	viper.SetConfigType("toml")
	config.BindEnv(viper.GetViper())
}
