// Command linter runs the repository's static checks as a multichecker:
// the go/analysis passes below, every SA check of staticcheck, S1000 from
// the simple suite, bodyclose and the local analyzers.
//
//	go run ./cmd/linter ./...
package main

import (
	"strings"

	"github.com/MikhailRaia/url-shortcuts/cmd/linter/analyzer"
	"github.com/timakin/bodyclose/passes/bodyclose"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
)

func main() {
	analyzers := []*analysis.Analyzer{
		copylock.Analyzer,
		errorsas.Analyzer,
		nilness.Analyzer,
		printf.Analyzer,
		shadow.Analyzer,
		structtag.Analyzer,
		unusedresult.Analyzer,
	}

	for _, a := range staticcheck.Analyzers {
		if strings.HasPrefix(a.Analyzer.Name, "SA") {
			analyzers = append(analyzers, a.Analyzer)
		}
	}

	for _, a := range simple.Analyzers {
		if a.Analyzer.Name == "S1000" {
			analyzers = append(analyzers, a.Analyzer)
		}
	}

	analyzers = append(analyzers,
		bodyclose.Analyzer,
		analyzer.Analyzer,
		analyzer.WeakRandAnalyzer,
	)

	multichecker.Main(analyzers...)
}
