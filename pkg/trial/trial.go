// Package trial drives the cardless trial provisioning flow: create a
// customer, attach an address, create a billed transaction, then poll the
// transaction until the payment provider finishes provisioning the
// subscription.
package trial

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/cardless-trial/pkg/billing"
	"github.com/dmitrymomot/cardless-trial/pkg/logger"
)

// State is a phase of the provisioning flow.
type State string

const (
	StateIdle     State = "idle"
	StateCreating State = "creating"
	StatePolling  State = "polling"
	StateSuccess  State = "success"
	StateError    State = "error"
)

// transitions lists the legal state changes; anything else is ignored.
var transitions = map[State][]State{
	StateIdle:     {StateCreating, StatePolling, StateError},
	StateCreating: {StatePolling, StateError},
	StatePolling:  {StatePolling, StateSuccess, StateError},
}

func canTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Update describes a flow state change, delivered to the notify hook so the
// UI can show progress while provisioning runs.
type Update struct {
	State          State
	Attempt        int
	TransactionID  string
	SubscriptionID string
	Err            error
}

// StartParams carries the signup form inputs.
type StartParams struct {
	Email       string
	CountryCode string
	PostalCode  string
	PriceID     string
}

// Result is the outcome of a flow run. TransactionID is always set once a
// transaction exists, so a timed-out flow can be resumed without creating
// duplicate records.
type Result struct {
	TransactionID  string
	SubscriptionID string
}

const (
	defaultPollInterval    = 5 * time.Second
	defaultMaxPollAttempts = 5
)

// Flow runs the provisioning sequence for one signup.
type Flow struct {
	gateway         billing.Gateway
	log             *slog.Logger
	pollInterval    time.Duration
	maxPollAttempts int
	notify          func(Update)
	flowID          string
	state           State
}

// Option configures a Flow.
type Option func(*Flow)

// WithPollInterval sets the delay between transaction polls.
func WithPollInterval(d time.Duration) Option {
	if d <= 0 {
		panic("WithPollInterval: duration must be > 0")
	}
	return func(f *Flow) { f.pollInterval = d }
}

// WithMaxPollAttempts sets how many times the transaction is polled before
// the flow gives up with ErrPollTimeout.
func WithMaxPollAttempts(n int) Option {
	if n <= 0 {
		panic("WithMaxPollAttempts: attempts must be > 0")
	}
	return func(f *Flow) { f.maxPollAttempts = n }
}

// WithLogger supplies a structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(f *Flow) {
		if log != nil {
			f.log = log
		}
	}
}

// WithNotify registers a hook called on every state change.
func WithNotify(notify func(Update)) Option {
	return func(f *Flow) {
		if notify != nil {
			f.notify = notify
		}
	}
}

// WithFlowID overrides the generated flow id used to correlate log entries.
func WithFlowID(id string) Option {
	return func(f *Flow) {
		if id != "" {
			f.flowID = id
		}
	}
}

// New creates a Flow for a single provisioning run.
func New(gateway billing.Gateway, opts ...Option) *Flow {
	f := &Flow{
		gateway:         gateway,
		log:             slog.Default(),
		pollInterval:    defaultPollInterval,
		maxPollAttempts: defaultMaxPollAttempts,
		notify:          func(Update) {},
		flowID:          uuid.NewString(),
		state:           StateIdle,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FlowID returns the correlation id for this run.
func (f *Flow) FlowID() string {
	return f.flowID
}

func (f *Flow) setState(to State, update Update) {
	if !canTransition(f.state, to) {
		return
	}
	f.state = to
	update.State = to
	f.notify(update)
}

// Start runs the full provisioning sequence. The returned Result carries the
// transaction id even on poll timeout so the caller can retry with Resume.
// No compensation is attempted for the customer and address records created
// before a transaction failure; they are traceable through the flow id.
func (f *Flow) Start(ctx context.Context, params StartParams) (Result, error) {
	f.setState(StateCreating, Update{})
	f.log.InfoContext(ctx, "starting trial provisioning",
		logger.Component("trial"),
		logger.FlowID(f.flowID),
		logger.PriceID(params.PriceID),
	)

	customer, err := f.gateway.CreateCustomer(ctx, params.Email)
	if err != nil {
		return f.fail(ctx, Result{}, fmt.Errorf("create customer: %w", err))
	}
	f.log.InfoContext(ctx, "customer created",
		logger.Component("trial"),
		logger.FlowID(f.flowID),
		logger.CustomerID(customer.ID),
	)

	address, err := f.gateway.CreateAddress(ctx, customer.ID, params.CountryCode, params.PostalCode)
	if err != nil {
		return f.fail(ctx, Result{}, fmt.Errorf("create address: %w", err))
	}

	txn, err := f.gateway.CreateTrialTransaction(ctx, billing.CreateTrialParams{
		CustomerID: customer.ID,
		AddressID:  address.ID,
		PriceID:    params.PriceID,
	})
	if err != nil {
		return f.fail(ctx, Result{}, fmt.Errorf("create transaction: %w", err))
	}
	f.log.InfoContext(ctx, "trial transaction created",
		logger.Component("trial"),
		logger.FlowID(f.flowID),
		logger.TransactionID(txn.ID),
	)

	return f.poll(ctx, txn.ID)
}

// Resume polls an existing transaction, used to retry after a poll timeout
// without creating duplicate customer or transaction records.
func (f *Flow) Resume(ctx context.Context, transactionID string) (Result, error) {
	if transactionID == "" {
		return f.fail(ctx, Result{}, ErrMissingTransactionID)
	}
	f.log.InfoContext(ctx, "resuming trial provisioning",
		logger.Component("trial"),
		logger.FlowID(f.flowID),
		logger.TransactionID(transactionID),
	)
	return f.poll(ctx, transactionID)
}

// poll checks the transaction until it completes with a subscription id. A
// completed transaction without one keeps getting polled: Paddle fills in
// the subscription id slightly after completion.
func (f *Flow) poll(ctx context.Context, transactionID string) (Result, error) {
	result := Result{TransactionID: transactionID}

	for attempt := 1; attempt <= f.maxPollAttempts; attempt++ {
		f.setState(StatePolling, Update{Attempt: attempt, TransactionID: transactionID})

		txn, err := f.gateway.GetTransaction(ctx, transactionID)
		if err != nil {
			return f.fail(ctx, result, fmt.Errorf("poll transaction: %w", err))
		}
		f.log.InfoContext(ctx, "polled transaction",
			logger.Component("trial"),
			logger.FlowID(f.flowID),
			logger.TransactionID(transactionID),
			logger.Attempt(attempt),
			slog.String("status", string(txn.Status)),
		)

		if txn.Status == billing.TransactionStatusCompleted &&
			txn.SubscriptionID != nil && *txn.SubscriptionID != "" {
			result.SubscriptionID = *txn.SubscriptionID
			f.setState(StateSuccess, Update{
				Attempt:        attempt,
				TransactionID:  transactionID,
				SubscriptionID: result.SubscriptionID,
			})
			f.log.InfoContext(ctx, "trial provisioned",
				logger.Component("trial"),
				logger.FlowID(f.flowID),
				logger.SubscriptionID(result.SubscriptionID),
			)
			return result, nil
		}

		if attempt == f.maxPollAttempts {
			break
		}

		timer := time.NewTimer(f.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return f.fail(ctx, result, ctx.Err())
		case <-timer.C:
		}
	}

	return f.fail(ctx, result, ErrPollTimeout)
}

func (f *Flow) fail(ctx context.Context, result Result, err error) (Result, error) {
	f.setState(StateError, Update{TransactionID: result.TransactionID, Err: err})
	f.log.ErrorContext(ctx, "trial provisioning failed",
		logger.Component("trial"),
		logger.FlowID(f.flowID),
		logger.TransactionID(result.TransactionID),
		logger.Error(err),
	)
	return result, err
}
