package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/kpfaulkner/ledgerstore/pkg/cli"
	"github.com/kpfaulkner/ledgerstore/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("unable to load config: %v", err)
	}

	if err := cli.NewRootCommand(cfg).ExecuteContext(context.Background()); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
