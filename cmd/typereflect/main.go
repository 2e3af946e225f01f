// Command typereflect generates static reflection providers for Go types
// annotated with //reflect: directives.
//
// Usage:
//
//	typereflect generate [patterns...]   write *_reflection.go providers
//	typereflect inspect [patterns...]    print what would be reflected
//	typereflect export [patterns...]     dump the scanned model as YAML
//	typereflect watch [patterns...]      regenerate when sources change
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Version information, set at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(1)
	}
}
