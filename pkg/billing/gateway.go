package billing

import "context"

// CreateTrialParams carries the inputs for starting a cardless trial.
type CreateTrialParams struct {
	CustomerID string
	AddressID  string
	PriceID    string
}

// Gateway is the port to the payment provider. Implementations translate
// between domain types and the provider's API.
type Gateway interface {
	// CreateCustomer creates a customer for the given email.
	CreateCustomer(ctx context.Context, email string) (Customer, error)

	// CreateAddress attaches a country/postal-code address to a customer.
	CreateAddress(ctx context.Context, customerID, countryCode, postalCode string) (Address, error)

	// CreateTrialTransaction creates a transaction with status "billed" so
	// the provider auto-completes it and provisions a trial subscription
	// without collecting a payment method.
	CreateTrialTransaction(ctx context.Context, params CreateTrialParams) (Transaction, error)

	// GetTransaction fetches a transaction, used to poll for completion.
	GetTransaction(ctx context.Context, transactionID string) (Transaction, error)

	// GetSubscription fetches a subscription by id.
	GetSubscription(ctx context.Context, subscriptionID string) (Subscription, error)

	// PaymentMethodTransaction returns the zero-value transaction used by the
	// checkout widget to collect or update a payment method.
	PaymentMethodTransaction(ctx context.Context, subscriptionID string) (Transaction, error)

	// PreviewPrices returns localized formatted totals for the given price
	// ids, optionally for a specific country.
	PreviewPrices(ctx context.Context, priceIDs []string, countryCode string) (PriceMap, error)
}
