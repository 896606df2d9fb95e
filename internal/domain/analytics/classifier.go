package analytics

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
)

// Class is the budget side a matrix entry counts toward.
type Class string

const (
	ClassIncome  Class = "income"
	ClassExpense Class = "expense"
)

// Classifier decides which side of the budget an entry belongs to.
type Classifier func(e BudgetEntry) Class

// Income-looking substrings checked against the lowercased category name.
var incomeMarkers = []string{"gelir", "satış", "revenue"}

// HeuristicClassifier classifies by category name: a name containing an
// income marker counts as income, everything else as expense.
func HeuristicClassifier(e BudgetEntry) Class {
	name := strings.ToLower(e.CategoryName)
	for _, marker := range incomeMarkers {
		if strings.Contains(name, marker) {
			return ClassIncome
		}
	}
	return ClassExpense
}

// DefaultClassifier prefers the explicit entry type when the row carries
// one and falls back to the name heuristic otherwise. Budget schemas name
// the income side either "income" or "revenue".
func DefaultClassifier(e BudgetEntry) Class {
	switch e.EntryType {
	case string(ClassIncome), "revenue":
		return ClassIncome
	case string(ClassExpense):
		return ClassExpense
	}
	return HeuristicClassifier(e)
}

// NewCELClassifier compiles a tenant-provided expression into a
// Classifier. The expression sees `category` and `entryType` string
// variables and must evaluate to "income" or "expense"; any other result
// falls back to the default classification for that entry.
func NewCELClassifier(expr string) (Classifier, error) {
	env, err := cel.NewEnv(
		cel.Variable("category", cel.StringType),
		cel.Variable("entryType", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile classifier expression: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.StringType) {
		return nil, fmt.Errorf("classifier expression must return a string, got %v", ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build classifier program: %w", err)
	}

	return func(e BudgetEntry) Class {
		out, _, err := prg.Eval(map[string]any{
			"category":  e.CategoryName,
			"entryType": e.EntryType,
		})
		if err != nil {
			return DefaultClassifier(e)
		}
		switch out.Value() {
		case string(ClassIncome):
			return ClassIncome
		case string(ClassExpense):
			return ClassExpense
		}
		return DefaultClassifier(e)
	}, nil
}
