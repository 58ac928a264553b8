package analyzer

import (
	"go/ast"
	"strconv"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// WeakRandAnalyzer reports math/rand imports in non-test files. Shortcut keys
// must come from crypto/rand or they become guessable.
var WeakRandAnalyzer = &analysis.Analyzer{
	Name: "weakrand",
	Doc:  "reports imports of math/rand outside tests",
	Run:  runWeakRand,
}

var weakRandPaths = map[string]bool{
	"math/rand":    true,
	"math/rand/v2": true,
}

func runWeakRand(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		filename := pass.Fset.Position(file.Pos()).Filename
		if strings.HasSuffix(filename, "_test.go") {
			continue
		}

		for _, spec := range file.Imports {
			checkImport(pass, spec)
		}
	}
	return nil, nil
}

func checkImport(pass *analysis.Pass, spec *ast.ImportSpec) {
	path, err := strconv.Unquote(spec.Path.Value)
	if err != nil || !weakRandPaths[path] {
		return
	}
	pass.Reportf(spec.Pos(), "%s is not a secure random source, use crypto/rand", path)
}
