// Package logger provides slog helpers shared across the application:
// a small factory for configured loggers and typed attribute constructors
// for the identifiers that appear throughout the billing flow.
package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// FlowID records the signup flow identifier under the key "flow_id".
// The flow id ties together the dependent customer, address, and transaction
// calls of one signup attempt.
func FlowID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("flow_id", id)
}

// CustomerID records the billing customer identifier under the key "customer_id".
func CustomerID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("customer_id", id)
}

// TransactionID records the billing transaction identifier under the key "transaction_id".
func TransactionID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("transaction_id", id)
}

// SubscriptionID records the subscription identifier under the key "subscription_id".
func SubscriptionID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("subscription_id", id)
}

// PriceID records the catalog price identifier under the key "price_id".
func PriceID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("price_id", id)
}

// Attempt records a poll attempt number under the key "attempt".
func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}
