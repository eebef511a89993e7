package main

import (
	"os"

	"github.com/Fepozopo/kernelimg/pkg/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
