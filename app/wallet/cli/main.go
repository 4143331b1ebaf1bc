package main

import "github.com/ardanlabs/powrace/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
