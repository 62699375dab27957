package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/Vasu3050/schoolsite/core"
	"github.com/Vasu3050/schoolsite/storage/mongo"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := mongo.Open(ctx, conf.Mongo)
	cancel()
	errAndDie(err)
	defer db.Close(context.Background())

	// start CLI
	cli := commandLine{
		accRepo: mongo.NewAccountRepository(db),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
