package cmd

import (
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "注册金库账户",
	Long:  `为 --principal 指定的主体创建金库账户, 返回专属存款地址。`,
	Run: func(cmd *cobra.Command, args []string) {
		callVault("POST", "/api/v1/vault/register", nil)
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
}
