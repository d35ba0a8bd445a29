package main

import "trf/internal/cli"

func main() {
	cli.Execute()
}
