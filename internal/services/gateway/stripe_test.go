package gateway

import (
	"context"
	"errors"
	"net/http"
	"testing"

	apperrors "arenapay/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v72"
)

type MockStripe struct {
	mock.Mock
}

func (m *MockStripe) NewPaymentIntent(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	args := m.Called(params)
	pi, _ := args.Get(0).(*stripe.PaymentIntent)
	return pi, args.Error(1)
}

func (m *MockStripe) NewTransfer(params *stripe.TransferParams) (*stripe.Transfer, error) {
	args := m.Called(params)
	tr, _ := args.Get(0).(*stripe.Transfer)
	return tr, args.Error(1)
}

func TestStripe_Charge(t *testing.T) {
	api := new(MockStripe)
	api.On("NewPaymentIntent", mock.MatchedBy(func(p *stripe.PaymentIntentParams) bool {
		return *p.Amount == 12050 && *p.Currency == "bdt" && *p.IdempotencyKey == "tx-1"
	})).Return(&stripe.PaymentIntent{ID: "pi_1", Status: stripe.PaymentIntentStatusSucceeded}, nil)

	res, err := newStripe(api, "BDT").Charge(context.Background(), testRequest())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "pi_1", res.TransactionID)
	api.AssertExpectations(t)
}

func TestStripe_ChargeNeedsAction(t *testing.T) {
	api := new(MockStripe)
	api.On("NewPaymentIntent", mock.Anything).
		Return(&stripe.PaymentIntent{ID: "pi_2", Status: stripe.PaymentIntentStatusRequiresAction}, nil)

	res, err := newStripe(api, "").Charge(context.Background(), testRequest())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "payment intent requires_action", res.Error)
}

func TestStripe_Errors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantDecline bool
		wantErr     error
	}{
		{name: "card declined", err: &stripe.Error{Type: stripe.ErrorTypeCard, Msg: "Your card was declined."}, wantDecline: true},
		{name: "payment required", err: &stripe.Error{Type: stripe.ErrorTypeAPI, HTTPStatusCode: http.StatusPaymentRequired, Msg: "no"}, wantDecline: true},
		{name: "api outage", err: &stripe.Error{Type: stripe.ErrorTypeAPI, HTTPStatusCode: http.StatusServiceUnavailable, Msg: "down"}, wantErr: apperrors.ErrGatewayUnavailable},
		{name: "network", err: errors.New("connection reset"), wantErr: apperrors.ErrGatewayUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockStripe)
			api.On("NewTransfer", mock.Anything).Return(nil, tt.err)

			res, err := newStripe(api, "usd").Payout(context.Background(), testRequest())
			if tt.wantDecline {
				require.NoError(t, err)
				assert.False(t, res.Success)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStripe_Payout(t *testing.T) {
	api := new(MockStripe)
	api.On("NewTransfer", mock.MatchedBy(func(p *stripe.TransferParams) bool {
		return *p.Destination == "01700000000" && *p.TransferGroup == "tx-1"
	})).Return(&stripe.Transfer{ID: "tr_1"}, nil)

	res, err := newStripe(api, "usd").Payout(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "tr_1", res.TransactionID)
}
