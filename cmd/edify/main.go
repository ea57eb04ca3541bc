package main

import "github.com/AtRiskMedia/edify/internal/cli"

func main() {
	cli.Execute()
}
