package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/felixgeelhaar/jacocogate/internal/cli"
)

func main() {
	code := cli.Run(os.Args, os.Stdout, os.Stderr, func(logger *zap.Logger) cli.Service {
		return cli.BuildService(os.Stdout, logger)
	})
	os.Exit(code)
}
