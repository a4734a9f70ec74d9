// Command hackvm translates VM programs into Hack assembly, and can run or
// lint them.
package main

import (
	"fmt"
	"os"

	"github.com/tebeka/atexit"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hackvm:", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
