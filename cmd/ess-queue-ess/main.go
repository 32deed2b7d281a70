// Package main is the entry point for the Ess-Queue-Ess broker.
package main

import (
	"log"

	"github.com/tonyellard/Ess-Queue-Ess/internal/admin"
	"github.com/tonyellard/Ess-Queue-Ess/internal/server"
	"github.com/tonyellard/Ess-Queue-Ess/internal/service/sqs"
)

func main() {
	cfg := server.DefaultConfig()
	srv := server.New(cfg)

	// admin shares the broker sqs registered at init() rather than standing
	// up a second queue directory.
	srv.RegisterService(admin.New(sqs.DefaultBroker()))

	if err := srv.Run(); err != nil {
		log.Fatal(err)
	}
}
