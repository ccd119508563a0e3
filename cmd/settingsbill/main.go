package main

import "github.com/ogulcanaydogan/settings-bill/internal/cli"

func main() {
	cli.Execute()
}
