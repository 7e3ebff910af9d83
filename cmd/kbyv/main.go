// Command kbyv cross-references ballot candidates against entity databases
// and publishes corroborated connections.
package main

import (
	"fmt"
	"os"

	"github.com/knowbeforeyouvote/kbyv/internal/adapters/driving/cli"
)

func main() {
	cli.SetBootstrap(bootstrap)
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
