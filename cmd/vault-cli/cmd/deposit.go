package cmd

import (
	"github.com/spf13/cobra"
)

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "触发对账入金",
	Long:  `让金库查询存款地址在外部账本上的余额, 并把新入金折入缓存余额。`,
	Run: func(cmd *cobra.Command, args []string) {
		callVault("POST", "/api/v1/vault/deposit", nil)
	},
}

func init() {
	rootCmd.AddCommand(depositCmd)
}
