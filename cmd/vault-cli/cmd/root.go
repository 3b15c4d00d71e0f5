package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "vault-cli",
	Short: "金库命令行工具",
	Long: `与金库服务交互的命令行工具。
支持注册账户、触发对账入金、发起提现和查询余额。`,
}

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var (
	serverURL string
	caller    string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "金库服务地址")
	rootCmd.PersistentFlags().StringVar(&caller, "principal", "", "调用者主体标识 (透传到 X-Vault-Principal)")
}

// callVault 调用金库 API 并打印响应 JSON。
func callVault(method, path string, body interface{}) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			fmt.Printf("构造请求失败: %v\n", err)
			os.Exit(1)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, serverURL+path, reader)
	if err != nil {
		fmt.Printf("构造请求失败: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set("X-Vault-Principal", caller)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("❌ 请求失败: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("读取响应失败: %v\n", err)
		os.Exit(1)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		fmt.Println(string(raw))
		return
	}
	fmt.Println(pretty.String())
}
