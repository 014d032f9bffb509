// Package main provides the ledger CLI.
package main

import "github.com/mesh-intelligence/taskledger/internal/cli"

func main() {
	cli.Execute()
}
