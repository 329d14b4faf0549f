package main

import "github.com/pfrederiksen/hackhunt/internal/cli"

func main() {
	cli.Execute()
}
