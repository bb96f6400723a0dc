// Package payment wraps the card payment gateway used at checkout.
package payment

import (
	"context"
	"errors"
)

var (
	ErrNotConfigured  = errors.New("payment gateway not configured")
	ErrIntentNotFound = errors.New("payment intent not found")
)

// Status mirrors the gateway's payment intent lifecycle states we care about.
type Status string

const StatusSucceeded Status = "succeeded"

// IntentRequest describes a charge to be authorized by the customer.
type IntentRequest struct {
	Amount   int64 // minor units
	Currency string
	Metadata map[string]string
}

type Intent struct {
	ID           string
	ClientSecret string
	Status       Status
	Amount       int64
	Currency     string
	Metadata     map[string]string
}

// Gateway creates and looks up payment intents.
type Gateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
}

// Unconfigured is used when no secret key is set; every call fails.
type Unconfigured struct{}

func (Unconfigured) CreateIntent(context.Context, IntentRequest) (*Intent, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) GetIntent(context.Context, string) (*Intent, error) {
	return nil, ErrNotConfigured
}
