package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/dmitrijs2005/govkeeper/internal/admin/cli"
)

func main() {

	server := flag.String("s", "http://127.0.0.1:8080", "server base URL")
	flag.Parse()

	app := cli.NewApp(*server, nil, os.Stdin, os.Stdout)

	if err := app.Run(context.Background(), flag.Args()); err != nil {
		log.Fatalf("%v", err)
	}

}
