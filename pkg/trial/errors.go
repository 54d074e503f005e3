package trial

import "errors"

var (
	// ErrPollTimeout indicates the transaction did not produce a subscription
	// within the allotted poll attempts. The transaction may still complete;
	// callers should offer a retry that resumes polling the same transaction.
	ErrPollTimeout = errors.New("timed out waiting for subscription provisioning")

	// ErrMissingTransactionID indicates a resume was requested without a
	// transaction to poll.
	ErrMissingTransactionID = errors.New("transaction id is required to resume provisioning")
)
