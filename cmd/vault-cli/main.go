package main

import "vault-core/cmd/vault-cli/cmd"

func main() {
	cmd.Execute()
}
