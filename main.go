package main

import "github.com/msomdec/thanku/internal/cli"

func main() {
	cli.Execute()
}
