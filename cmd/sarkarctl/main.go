// Command sarkarctl seeds the scheme catalog, runs the deadline sweep once,
// and manages the database schema.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
