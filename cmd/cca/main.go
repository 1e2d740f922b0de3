// cca - Colour Contrast Analyser
//
// cca samples two on-screen colours through a pluggable backend, computes
// their WCAG contrast ratio and reports conformance against the WCAG 2.x
// levels.
package main

import (
	"github.com/jmylchreest/cca/internal/cli"
)

func main() {
	cli.Execute()
}
