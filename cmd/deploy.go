package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DarkHorse0725/NFT-marketplace/service"
)

// DeployCmd 按部署计划依次部署合约
var DeployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "deploy the configured contracts to the target network.",
	Long:  "deploy the configured contracts in order, waiting for each deployment to be mined before the next one.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithSignal(cmd.Context(), func(ctx context.Context) error {
			return withService(ctx, func(s *service.Service) error {
				deployed, err := s.Deploy()
				for _, c := range deployed {
					fmt.Fprintf(cmd.OutOrStdout(), "%s Contract Address: %s\n", c.Name, c.Address.Hex())
				}
				return err
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(DeployCmd)
}
