// connlog - Host Connection Log Analyzer
//
// connlog loads connection logs and reports which hosts connected to and
// from each other over a time range or a recent period.
package main

import (
	"os"

	"github.com/ccollicutt/connlog/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
