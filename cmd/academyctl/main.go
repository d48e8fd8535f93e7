package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/jrsteele09/academy-admin/internal/cli"
	"github.com/jrsteele09/academy-admin/internal/config"
	"github.com/jrsteele09/academy-admin/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = fmt.Errorf("panic recovered")
		}
	}()

	c := config.New()
	logging.Init(c.GetLogLevel(), c.GetEnv())
	return cli.Execute(c)
}
