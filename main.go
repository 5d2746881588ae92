// main is the entry point for the codepulse CLI.
package main

import (
	"os"

	"github.com/zeyadhassan/codepulse/cmd"
	"github.com/zeyadhassan/codepulse/internal/contract"
	"github.com/zeyadhassan/codepulse/internal/iocache"
)

func main() {
	defer iocache.CloseStores()

	if err := cmd.Execute(); err != nil {
		iocache.CloseStores()
		contract.LogWarn("codepulse failed", err)
		os.Exit(1)
	}
}
