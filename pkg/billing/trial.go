package billing

// IsCardlessTrial reports whether a subscription is a trial started without a
// payment method: status is trialing and the provider has neither a next
// billing date nor a scheduled change. Once the customer adds a payment
// method, NextBilledAt becomes non-nil and the subscription stops being
// cardless even though it is still trialing.
func IsCardlessTrial(sub Subscription) bool {
	return sub.Status == SubscriptionStatusTrialing &&
		sub.NextBilledAt == nil &&
		sub.ScheduledChange == nil
}

// StatusLabel is a display label with a badge variant for the UI.
type StatusLabel struct {
	Text    string
	Variant string // "default", "secondary", or "outline"
}

// SubscriptionStatusLabel returns the display label for a subscription:
// cardless trials and trials with a payment method get distinct labels, any
// other status is shown as-is.
func SubscriptionStatusLabel(sub Subscription) StatusLabel {
	if IsCardlessTrial(sub) {
		return StatusLabel{Text: "Trial (cardless)", Variant: "default"}
	}
	if sub.Status == SubscriptionStatusTrialing {
		return StatusLabel{Text: "Trial (with payment method)", Variant: "secondary"}
	}
	return StatusLabel{Text: string(sub.Status), Variant: "outline"}
}
