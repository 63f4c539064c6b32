package main

import "github.com/pfrederiksen/timebox/internal/cli"

func main() {
	cli.Execute()
}
