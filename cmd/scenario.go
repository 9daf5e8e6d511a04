package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/DarkHorse0725/NFT-marketplace/service"
	"github.com/DarkHorse0725/NFT-marketplace/service/scenario"
)

// ScenarioCmd 执行市场/拍卖流程，默认在进程内的 hardhat 链上运行
var ScenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "run the marketplace and auction flow.",
	Long:  "deploy MOON, MoonNFT, the marketplace and the auction, then mint, list and auction a token step by step.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithSignal(cmd.Context(), func(ctx context.Context) error {
			return withService(ctx, func(s *service.Service) error {
				results, err := s.Scenario()
				printResults(cmd, results)
				return err
			})
		})
	},
}

func printResults(cmd *cobra.Command, results []scenario.Result) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tKIND\tCONTRACT\tMETHOD\tFROM\tRESULT")
	for _, r := range results {
		result := r.TxHash
		switch r.Kind {
		case scenario.KindDeploy:
			result = r.Address
		case scenario.KindCall:
			result = strings.Join(r.Outputs, ", ")
		}
		from := r.From
		if from == "" {
			from = "owner"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", r.Index, r.Kind, r.Contract, r.Method, from, result)
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(ScenarioCmd)
}
