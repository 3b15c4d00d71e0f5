package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "发起提现",
	Long:  `从金库余额向目标地址转账。金额是含手续费的总额, 账本实收 = 金额 - 手续费。`,
	Run: func(cmd *cobra.Command, args []string) {
		to, _ := cmd.Flags().GetString("to")
		amount, _ := cmd.Flags().GetString("amount")
		if to == "" || amount == "" {
			fmt.Println("必须指定 --to 和 --amount")
			os.Exit(1)
		}

		callVault("POST", "/api/v1/vault/withdraw", map[string]string{
			"to_address": to,
			"amount":     amount,
		})
	},
}

func init() {
	rootCmd.AddCommand(withdrawCmd)
	withdrawCmd.Flags().String("to", "", "目标地址")
	withdrawCmd.Flags().String("amount", "", "提现金额 (基础单位, 含手续费)")
}
