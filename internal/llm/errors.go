package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"charm.land/fantasy"

	"github.com/anand-patil-4/AI-TRIP-PLANNER/internal/errs"
)

// classify maps a provider failure onto the error kinds. Nothing is retried.
func classify(provider string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var providerErr *fantasy.ProviderError
	if !errors.As(err, &providerErr) {
		return errs.Upstream(err, "There was a problem with the %s API request.", provider)
	}

	switch providerErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errs.Authentication(err, "The %s API rejected the credential.", provider)
	case http.StatusNotFound:
		return errs.Upstream(err, "The %s API does not know this model.", provider)
	case http.StatusBadRequest:
		if isContextLengthExceeded(providerErr) {
			return errs.Upstream(err, "Maximum prompt size exceeded.")
		}
	}

	reason := fantasy.ErrorTitleForStatusCode(providerErr.StatusCode)
	if reason == "" {
		reason = fmt.Sprintf("%s API request error.", provider)
	}
	if providerErr.IsRetryable() {
		reason += " Try again later."
	}
	return errs.Upstream(err, "%s", reason)
}

func isContextLengthExceeded(err *fantasy.ProviderError) bool {
	return strings.Contains(strings.ToLower(err.Message), "context_length_exceeded") ||
		strings.Contains(strings.ToLower(string(err.ResponseBody)), "context_length_exceeded")
}
