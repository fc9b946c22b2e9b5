// Command pktdump decodes a single packet from hex or base64 and prints
// its layer chain. It is a thin wrapper around pkg/ipstack's lax walk —
// the CLI exists to make the codec easy to poke at from a shell, not to
// add decoding logic of its own.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	Execute()
}

// Execute runs the root command and exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
