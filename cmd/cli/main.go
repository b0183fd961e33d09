package main

import "github.com/psymetrics/irtsim/pkg/cli"

func main() {
	cli.Execute()
}
