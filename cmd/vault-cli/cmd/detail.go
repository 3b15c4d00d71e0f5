package cmd

import (
	"github.com/spf13/cobra"
)

var detailCmd = &cobra.Command{
	Use:   "detail",
	Short: "查询账户",
	Long:  `查询调用者的存款地址和当前缓存余额。`,
	Run: func(cmd *cobra.Command, args []string) {
		callVault("GET", "/api/v1/vault/detail", nil)
	},
}

func init() {
	rootCmd.AddCommand(detailCmd)
}
