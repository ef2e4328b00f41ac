// Package main is the entry point for tip.
package main

import (
	"github.com/samber/lo"
	"github.com/tip-cli/tip/cmd"
	"github.com/tip-cli/tip/config"
	"github.com/tip-cli/tip/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
