package main

import (
	"fmt"
	"log"
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/statsbridge/statsbridge/cli"
	_ "github.com/statsbridge/statsbridge/diagnostics"
)

func main() {
	c, err, ok := cli.NewConfigFromCLI(os.Args)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if ok {
		os.Exit(0)
	}

	opts := []cli.Option{
		cli.WithName("statsbridge"),
		cli.WithDefaultPublisher(),
	}

	runner, err := cli.NewRunner(c, opts)

	if err != nil {
		fmt.Printf("%+v\n", err)
		os.Exit(1)
	}

	err = runner.Run()

	if err != nil {
		fmt.Printf("%+v\n", err)
		os.Exit(1)
	}
}
