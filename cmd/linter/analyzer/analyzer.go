// Package analyzer holds the repository's own static checks.
package analyzer

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"
)

// Analyzer reports panic, log.Fatal and os.Exit outside a main function.
// Servers must return errors so that storage gets closed on the way out.
var Analyzer = &analysis.Analyzer{
	Name:     "forbiddencalls",
	Doc:      "reports usage of panic, log.Fatal, and os.Exit outside main function",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      runForbiddenCalls,
}

var exitFuncs = map[string]string{
	"log.Fatal": "log.Fatal is forbidden outside main function",
	"os.Exit":   "os.Exit is forbidden outside main function",
}

func runForbiddenCalls(pass *analysis.Pass) (interface{}, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.CallExpr)(nil),
	}

	insp.WithStack(nodeFilter, func(node ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}

		call := node.(*ast.CallExpr)

		if ident, ok := call.Fun.(*ast.Ident); ok && ident.Name == "panic" {
			if _, builtin := pass.TypesInfo.Uses[ident].(*types.Builtin); builtin {
				pass.Reportf(call.Pos(), "panic is forbidden")
			}
			return true
		}

		fn, ok := typeutil.Callee(pass.TypesInfo, call).(*types.Func)
		if !ok || fn.Pkg() == nil {
			return true
		}

		msg, forbidden := exitFuncs[fn.Pkg().Path()+"."+fn.Name()]
		if forbidden && !insideMain(stack) {
			pass.Reportf(call.Pos(), "%s", msg)
		}
		return true
	})

	return nil, nil
}

// insideMain reports whether the innermost enclosing function declaration
// is a plain func main.
func insideMain(stack []ast.Node) bool {
	for i := len(stack) - 1; i >= 0; i-- {
		if decl, ok := stack[i].(*ast.FuncDecl); ok {
			return decl.Recv == nil && decl.Name.Name == "main"
		}
	}
	return false
}
