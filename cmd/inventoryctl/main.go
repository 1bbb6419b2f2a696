package main

import "github.com/codyseavey/tcg-inventory-sync/cmd/inventoryctl/cmd"

func main() {
	cmd.Execute()
}
