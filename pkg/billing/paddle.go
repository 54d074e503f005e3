package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
)

// Config holds Paddle API credentials. A missing API key is fatal: no
// gateway call can proceed without it.
type Config struct {
	APIKey      string `env:"PADDLE_API_KEY,required"`
	Environment string `env:"PADDLE_ENVIRONMENT" envDefault:"sandbox"`
}

// PaddleGateway implements Gateway on top of the Paddle API.
type PaddleGateway struct {
	client *paddle.SDK
}

// NewPaddleGateway creates a Paddle-backed gateway for the configured
// environment.
func NewPaddleGateway(cfg Config) (*PaddleGateway, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("paddle API key is required")
	}

	var client *paddle.SDK
	var err error

	switch strings.ToLower(cfg.Environment) {
	case "sandbox", "":
		client, err = paddle.NewSandbox(cfg.APIKey)
	case "production":
		client, err = paddle.New(cfg.APIKey)
	default:
		return nil, fmt.Errorf("invalid paddle environment: %s", cfg.Environment)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle client: %w", err)
	}

	return &PaddleGateway{client: client}, nil
}

func (g *PaddleGateway) CreateCustomer(ctx context.Context, email string) (Customer, error) {
	customer, err := g.client.CustomersClient.CreateCustomer(ctx, &paddle.CreateCustomerRequest{
		Email: email,
	})
	if err != nil {
		return Customer{}, fmt.Errorf("failed to create paddle customer: %w", err)
	}
	return Customer{ID: customer.ID, Email: customer.Email}, nil
}

func (g *PaddleGateway) CreateAddress(ctx context.Context, customerID, countryCode, postalCode string) (Address, error) {
	address, err := g.client.AddressesClient.CreateAddress(ctx, &paddle.CreateAddressRequest{
		CustomerID:  customerID,
		CountryCode: paddle.CountryCode(countryCode),
		PostalCode:  paddle.PtrTo(postalCode),
	})
	if err != nil {
		return Address{}, fmt.Errorf("failed to create paddle address: %w", err)
	}
	return Address{ID: address.ID, CountryCode: countryCode, PostalCode: postalCode}, nil
}

// CreateTrialTransaction creates a transaction with status "billed". Paddle
// auto-completes billed transactions for prices with a trial period, which
// provisions the trial subscription without collecting a payment method.
func (g *PaddleGateway) CreateTrialTransaction(ctx context.Context, params CreateTrialParams) (Transaction, error) {
	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  params.PriceID,
		Quantity: 1,
	})

	txn, err := g.client.TransactionsClient.CreateTransaction(ctx, &paddle.CreateTransactionRequest{
		Items:          []paddle.CreateTransactionItems{*item},
		CustomerID:     paddle.PtrTo(params.CustomerID),
		AddressID:      paddle.PtrTo(params.AddressID),
		CollectionMode: paddle.PtrTo(paddle.CollectionModeAutomatic),
		Status:         paddle.PtrTo(paddle.TransactionStatusBilled),
	})
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to create paddle transaction: %w", err)
	}
	return mapTransaction(txn), nil
}

func (g *PaddleGateway) GetTransaction(ctx context.Context, transactionID string) (Transaction, error) {
	txn, err := g.client.TransactionsClient.GetTransaction(ctx, &paddle.GetTransactionRequest{
		TransactionID: transactionID,
	})
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to fetch paddle transaction: %w", err)
	}
	return mapTransaction(txn), nil
}

func (g *PaddleGateway) GetSubscription(ctx context.Context, subscriptionID string) (Subscription, error) {
	sub, err := g.client.SubscriptionsClient.GetSubscription(ctx, &paddle.GetSubscriptionRequest{
		SubscriptionID: subscriptionID,
	})
	if err != nil {
		return Subscription{}, fmt.Errorf("failed to fetch paddle subscription: %w", err)
	}
	return mapSubscription(sub), nil
}

// PaymentMethodTransaction returns the zero-value transaction Paddle uses to
// collect or update a payment method for an existing subscription.
func (g *PaddleGateway) PaymentMethodTransaction(ctx context.Context, subscriptionID string) (Transaction, error) {
	txn, err := g.client.SubscriptionsClient.GetSubscriptionUpdatePaymentMethodTransaction(ctx, &paddle.GetSubscriptionUpdatePaymentMethodTransactionRequest{
		SubscriptionID: subscriptionID,
	})
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get payment method transaction: %w", err)
	}
	return mapTransaction(txn), nil
}

func (g *PaddleGateway) PreviewPrices(ctx context.Context, priceIDs []string, countryCode string) (PriceMap, error) {
	if len(priceIDs) == 0 {
		return PriceMap{}, nil
	}

	items := make([]paddle.PricePreviewItem, 0, len(priceIDs))
	for _, priceID := range priceIDs {
		items = append(items, paddle.PricePreviewItem{
			PriceID:  priceID,
			Quantity: 1,
		})
	}

	req := &paddle.PreviewPricesRequest{Items: items}
	if countryCode != "" {
		req.Address = &paddle.AddressPreview{
			CountryCode: paddle.CountryCode(countryCode),
		}
	}

	preview, err := g.client.PricingPreviewClient.PreviewPrices(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to preview paddle prices: %w", err)
	}

	prices := make(PriceMap, len(preview.Details.LineItems))
	for _, line := range preview.Details.LineItems {
		prices[line.Price.ID] = line.FormattedTotals.Total
	}
	return prices, nil
}

func mapTransaction(txn *paddle.Transaction) Transaction {
	t := Transaction{
		ID:             txn.ID,
		Status:         TransactionStatus(txn.Status),
		SubscriptionID: txn.SubscriptionID,
	}
	if txn.CustomerID != nil {
		t.CustomerID = *txn.CustomerID
	}
	return t
}

func mapSubscription(sub *paddle.Subscription) Subscription {
	s := Subscription{
		ID:     sub.ID,
		Status: SubscriptionStatus(sub.Status),
	}
	if sub.NextBilledAt != nil {
		if ts, err := time.Parse(time.RFC3339, *sub.NextBilledAt); err == nil {
			s.NextBilledAt = &ts
		}
	}
	if sub.ScheduledChange != nil {
		change := ScheduledChange{Action: string(sub.ScheduledChange.Action)}
		if ts, err := time.Parse(time.RFC3339, sub.ScheduledChange.EffectiveAt); err == nil {
			change.EffectiveAt = ts
		}
		s.ScheduledChange = &change
	}
	if sub.CurrentBillingPeriod != nil {
		period := BillingPeriod{}
		if ts, err := time.Parse(time.RFC3339, sub.CurrentBillingPeriod.StartsAt); err == nil {
			period.StartsAt = ts
		}
		if ts, err := time.Parse(time.RFC3339, sub.CurrentBillingPeriod.EndsAt); err == nil {
			period.EndsAt = ts
		}
		s.CurrentBillingPeriod = &period
	}
	return s
}
