package billing

import (
	"errors"

	"github.com/PaddleHQ/paddle-go-sdk/v4/pkg/paddleerr"
)

// GenericErrorMessage is shown when an error carries no detail safe to
// surface to the customer.
const GenericErrorMessage = "Something went wrong, please try again later"

var (
	// ErrSubscriptionNotFound indicates the stored subscription id no longer
	// resolves to a subscription.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// FriendlyMessage extracts a customer-facing message from a provider error.
// Paddle API errors expose their detail field, other errors fall back to
// their message, nil-safe.
func FriendlyMessage(err error) string {
	if err == nil {
		return GenericErrorMessage
	}

	var apiErr *paddleerr.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return GenericErrorMessage
}
