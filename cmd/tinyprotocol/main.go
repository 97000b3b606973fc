package main

import "tinyprotocol/internal/cli"

func main() {
	cli.Execute()
}
