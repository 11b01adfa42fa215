package main

import "github.com/gridworks/mapgen/internal/cli"

func main() {
	cli.Execute()
}
