package main

import "github.com/dkrasnov/tvcut/internal/cli"

func main() {
	cli.Main()
}
