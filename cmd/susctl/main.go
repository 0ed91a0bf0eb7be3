package main

import (
	"github.com/avvvet/sus-services/internal/cli"
)

func main() {
	cli.Execute()
}
