package main

import "github.com/tessro/ambient/internal/cli"

func main() {
	cli.Execute()
}
