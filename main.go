// main is the entry point for the calheat CLI.
package main

import (
	"os"

	"github.com/huangsam/calheat/cmd"
	"github.com/huangsam/calheat/internal/contract"
	"github.com/huangsam/calheat/internal/iocache"
)

func main() {
	cmd.SetStoreManager(iocache.Manager)

	err := cmd.Execute()

	iocache.CloseStores()
	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Failed to stop profiling", perr)
	}

	if err != nil {
		contract.LogWarn("Command failed", err)
		os.Exit(1)
	}
}
