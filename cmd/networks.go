package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/DarkHorse0725/NFT-marketplace/service/config"
)

// NetworksCmd 列出已配置的网络，以及环境变量是否已设置
var NetworksCmd = &cobra.Command{
	Use:   "networks",
	Short: "list the configured networks.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.UnmarshalCmdConfig()
		if err != nil {
			return err
		}
		return printNetworks(cmd, cfg)
	},
}

func printNetworks(cmd *cobra.Command, cfg *config.Config) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCHAIN ID\tURL\tREADY\tEXPLORER KEY")
	fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", config.HardhatNetwork, config.HardhatChainID, "(in-process)", "yes", "-")
	for _, name := range cfg.NetworkNames() {
		n := cfg.Networks[name]
		_, hasKey := cfg.ExplorerKey(name)
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", name, n.ChainID, n.URL, yesNo(ready(n)), yesNo(hasKey))
	}
	return w.Flush()
}

// ready 地址与所有私钥展开环境变量后都不为空
func ready(n *config.Network) bool {
	if strings.TrimSpace(os.ExpandEnv(n.URL)) == "" || len(n.Accounts) == 0 {
		return false
	}
	for _, acc := range n.Accounts {
		if strings.TrimSpace(os.ExpandEnv(acc)) == "" {
			return false
		}
	}
	return true
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	rootCmd.AddCommand(NetworksCmd)
}
