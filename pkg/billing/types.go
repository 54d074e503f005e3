// Package billing defines the domain types for subscriptions, transactions,
// and localized price previews, plus the Gateway port to the payment
// provider. The Paddle implementation lives in paddle.go; everything else in
// the app depends only on the Gateway interface.
package billing

import "time"

// SubscriptionStatus is the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusPaused   SubscriptionStatus = "paused"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// TransactionStatus is the lifecycle state of a transaction.
type TransactionStatus string

const (
	TransactionStatusDraft     TransactionStatus = "draft"
	TransactionStatusReady     TransactionStatus = "ready"
	TransactionStatusBilled    TransactionStatus = "billed"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusCanceled  TransactionStatus = "canceled"
)

// Customer is a billing customer record.
type Customer struct {
	ID    string
	Email string
}

// Address is a minimal billing address, enough for tax localization.
type Address struct {
	ID          string
	CountryCode string
	PostalCode  string
}

// Transaction is a billing transaction. SubscriptionID stays nil until the
// provider finishes provisioning the subscription for a billed transaction.
type Transaction struct {
	ID             string
	Status         TransactionStatus
	CustomerID     string
	SubscriptionID *string
}

// BillingPeriod is the current service period of a subscription.
type BillingPeriod struct {
	StartsAt time.Time
	EndsAt   time.Time
}

// ScheduledChange is a pending subscription change such as a scheduled
// cancellation or pause.
type ScheduledChange struct {
	Action      string
	EffectiveAt time.Time
}

// Subscription is a provisioned subscription. NextBilledAt and
// ScheduledChange are nil when the provider has nothing scheduled, which is
// what distinguishes a cardless trial from a trial with a payment method.
type Subscription struct {
	ID                   string
	Status               SubscriptionStatus
	NextBilledAt         *time.Time
	ScheduledChange      *ScheduledChange
	CurrentBillingPeriod *BillingPeriod
}
