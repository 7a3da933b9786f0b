package main

import (
	"os"

	"cosmossdk.io/log"

	"github.com/bitfsorg/libcrowdsale-go/cmd/crowdledger/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		log.NewLogger(os.Stderr).Error("crowdledger failed", "err", err)
		os.Exit(1)
	}
}
