package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/errs"
)

// ExpenseCalculatorName is the name of the built-in trip cost calculator.
const ExpenseCalculatorName = "expense_calculator"

var builtins = map[string]func() Tool{
	ExpenseCalculatorName: ExpenseCalculator,
}

// BuiltinNames returns the names of the built-in tools, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Builtin returns the named built-in tool.
func Builtin(name string) (Tool, error) {
	mk, ok := builtins[name]
	if !ok {
		return nil, errs.Configuration(
			errs.UserErrorf("Built-in tools are: %s", strings.Join(BuiltinNames(), ", ")),
			"Unknown built-in tool %q.", name,
		)
	}
	return mk(), nil
}

type expenseArgs struct {
	Operation string    `json:"operation"`
	Values    []float64 `json:"values"`
	Days      int       `json:"days"`
}

// ExpenseCalculator adds up, splits per day or multiplies trip costs.
func ExpenseCalculator() Tool {
	return Func{
		Def: Spec{
			Name: ExpenseCalculatorName,
			Description: "Calculate trip expenses. total sums the values, per_day divides their sum by days, " +
				"multiply multiplies the values (for example a nightly rate by the number of nights).",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"operation": map[string]any{
						"type":        "string",
						"enum":        []string{"total", "per_day", "multiply"},
						"description": "Calculation to run.",
					},
					"values": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "number"},
						"minItems":    1,
						"description": "Amounts to combine.",
					},
					"days": map[string]any{
						"type":        "integer",
						"minimum":     1,
						"description": "Trip length, required for per_day.",
					},
				},
				"required":             []string{"operation", "values"},
				"additionalProperties": false,
			},
		},
		Fn: calculateExpense,
	}
}

func calculateExpense(_ context.Context, raw json.RawMessage) (string, error) {
	var args expenseArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("decode arguments: %w", err)
	}

	var sum float64
	for _, v := range args.Values {
		sum += v
	}

	var result float64
	switch args.Operation {
	case "total":
		result = sum
	case "per_day":
		if args.Days <= 0 {
			return "", fmt.Errorf("per_day needs a positive number of days")
		}
		result = sum / float64(args.Days)
	case "multiply":
		result = 1
		for _, v := range args.Values {
			result *= v
		}
	default:
		return "", fmt.Errorf("unknown operation %q", args.Operation)
	}

	return strconv.FormatFloat(math.Round(result*100)/100, 'f', -1, 64), nil
}
