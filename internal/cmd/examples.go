package cmd

import (
	"math/rand"
	"regexp"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/present"
)

var examples = map[string]string{
	"Plan a long weekend":               `tripplanner "Plan 3 days in Lisbon in May on a mid-range budget"`,
	"Budget a trip with the calculator": `tripplanner --tool expense_calculator "Hotel is 120 a night for 5 nights plus 300 flights, what's the total?"`,
	"Turn notes into an itinerary":      `cat notes.md | tripplanner -p openai "turn these notes into a day by day itinerary" | glow`,
	"Continue a saved conversation":     `cat trip.json | tripplanner --json > trip-next.json`,
}

func randomExample() string {
	keys := make([]string, 0, len(examples))
	for k := range examples {
		keys = append(keys, k)
	}
	desc := keys[rand.Intn(len(keys))] //nolint:gosec
	return desc
}

func cheapHighlighting(s present.Styles, code string) string {
	code = regexp.
		MustCompile(`"([^"\\]|\\.)*"`).
		ReplaceAllStringFunc(code, func(x string) string {
			return s.Quote.Render(x)
		})
	code = regexp.
		MustCompile(`\|`).
		ReplaceAllStringFunc(code, func(x string) string {
			return s.Pipe.Render(x)
		})
	return code
}
