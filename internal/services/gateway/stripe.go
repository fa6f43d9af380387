package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
)

// stripeAPI is the part of the Stripe client the adapter uses.
type stripeAPI interface {
	NewPaymentIntent(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	NewTransfer(params *stripe.TransferParams) (*stripe.Transfer, error)
}

type stripeClient struct {
	api *client.API
}

func (c stripeClient) NewPaymentIntent(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return c.api.PaymentIntents.New(params)
}

func (c stripeClient) NewTransfer(params *stripe.TransferParams) (*stripe.Transfer, error) {
	return c.api.Transfers.New(params)
}

// Stripe charges cards through confirmed PaymentIntents and pays out
// through Transfers to connected accounts.
type Stripe struct {
	api      stripeAPI
	currency string
}

func NewStripe(secretKey, currency string) *Stripe {
	return newStripe(stripeClient{api: client.New(secretKey, nil)}, currency)
}

func newStripe(api stripeAPI, currency string) *Stripe {
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &Stripe{api: api, currency: strings.ToLower(currency)}
}

func (s *Stripe) Name() string { return "stripe" }

func (s *Stripe) Charge(ctx context.Context, req Request) (*Result, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(minorUnits(req)),
		Currency:      stripe.String(s.currency),
		PaymentMethod: stripe.String(req.Account),
		Confirm:       stripe.Bool(true),
		Description:   stripe.String("wallet deposit " + req.Reference),
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.Reference)
	params.AddMetadata("user_id", req.UserID)
	params.AddMetadata("transaction_id", req.Reference)

	pi, err := s.api.NewPaymentIntent(params)
	if err != nil {
		return s.failure(err)
	}

	raw := map[string]interface{}{"status": string(pi.Status)}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return &Result{
			Success:       false,
			TransactionID: pi.ID,
			Error:         "payment intent " + string(pi.Status),
			Provider:      s.Name(),
			Raw:           raw,
		}, nil
	}
	return &Result{Success: true, TransactionID: pi.ID, Provider: s.Name(), Raw: raw}, nil
}

func (s *Stripe) Payout(ctx context.Context, req Request) (*Result, error) {
	params := &stripe.TransferParams{
		Amount:        stripe.Int64(minorUnits(req)),
		Currency:      stripe.String(s.currency),
		Destination:   stripe.String(req.Account),
		TransferGroup: stripe.String(req.Reference),
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.Reference)
	params.AddMetadata("user_id", req.UserID)

	tr, err := s.api.NewTransfer(params)
	if err != nil {
		return s.failure(err)
	}
	return &Result{Success: true, TransactionID: tr.ID, Provider: s.Name()}, nil
}

// failure maps card and request errors to a declined Result. Everything
// else is a transport failure.
func (s *Stripe) failure(err error) (*Result, error) {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch {
		case stripeErr.Type == stripe.ErrorTypeCard,
			stripeErr.Type == stripe.ErrorTypeInvalidRequest,
			stripeErr.HTTPStatusCode == http.StatusPaymentRequired:
			return &Result{
				Success:  false,
				Error:    stripeErr.Msg,
				Provider: s.Name(),
				Raw: map[string]interface{}{
					"type": string(stripeErr.Type),
					"code": string(stripeErr.Code),
				},
			}, nil
		}
		return nil, transportError(s.Name(), fmt.Errorf("stripe %s: %s", stripeErr.Type, stripeErr.Msg))
	}
	return nil, transportError(s.Name(), err)
}

func minorUnits(req Request) int64 {
	return req.Amount.Shift(2).Round(0).IntPart()
}
