package main

import "cricket-analyzer/internal/cli"

func main() {
	cli.Execute()
}
