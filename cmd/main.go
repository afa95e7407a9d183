package main

import (
	"context"
	"os"
)

func main() {
	if err := new(cli).run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}
