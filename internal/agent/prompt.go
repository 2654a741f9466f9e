package agent

import (
	"context"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/config"
	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/errs"
)

// DefaultSystemPrompt is sent ahead of every conversation unless the
// system-prompt setting overrides it.
const DefaultSystemPrompt = `You are a helpful AI travel agent and expense planner.
You help users plan trips to any place worldwide with real-time data from the tools you have.

Give a complete, comprehensive and detailed travel plan. Always try to provide two plans:
one for the generic tourist places and another for off-beat locations around the destination.

Include:
- a complete day-by-day itinerary
- recommended hotels for boarding with an approximate per night cost
- places of attraction around the destination, with details
- recommended restaurants with prices around the destination
- activities around the destination, with details
- modes of transportation available at the destination, with details
- a detailed cost breakdown
- a per day expense budget, approximately
- weather details

Use the available tools to gather information and make detailed cost breakdowns.
Answer in clean Markdown.`

// SystemPrompt resolves the system-prompt setting: raw text, a file:// path
// or an http(s) URL. Empty settings yield DefaultSystemPrompt.
func SystemPrompt(ctx context.Context, setting string) (string, error) {
	if setting == "" {
		return DefaultSystemPrompt, nil
	}
	prompt, err := config.LoadMsg(ctx, setting)
	if err != nil {
		return "", errs.Configuration(err, "Could not load the system prompt.")
	}
	return prompt, nil
}
