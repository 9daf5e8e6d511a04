package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/DarkHorse0725/NFT-marketplace/service/config"
	"github.com/DarkHorse0725/NFT-marketplace/service/registry"
)

// DeploymentsCmd 列出目标网络的历史部署记录，不需要连接节点
var DeploymentsCmd = &cobra.Command{
	Use:   "deployments",
	Short: "list recorded deployments of the target network.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.UnmarshalCmdConfig()
		if err != nil {
			return err
		}
		store, err := registry.New(cfg.Registry)
		if err != nil {
			return err
		}
		defer store.Close()
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		records, err := store.List(ctx, strings.ToLower(network))
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CONTRACT\tALIAS\tADDRESS\tBLOCK\tDEPLOYED AT\tRUN")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
				r.Contract, r.Alias, r.Address, r.BlockNumber, r.DeployedAt.Format(time.RFC3339), r.RunID)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(DeploymentsCmd)
}
