// Command constellations weaves catalog points into named trails, stores
// them locally and shares them as links or images.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, errUsage) {
			os.Exit(exitUserError)
		}
		os.Exit(exitSysError)
	}
}
