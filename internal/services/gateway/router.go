package gateway

import (
	"context"
	"fmt"
	"sort"

	apperrors "arenapay/internal/errors"
)

// Router dispatches to an adapter by payment method.
type Router struct {
	adapters map[string]Adapter
}

func NewRouter() *Router {
	return &Router{adapters: make(map[string]Adapter)}
}

// Register binds method to adapter, replacing any previous binding.
func (r *Router) Register(method string, adapter Adapter) *Router {
	r.adapters[method] = adapter
	return r
}

// Resolve returns the adapter for method.
func (r *Router) Resolve(method string) (Adapter, error) {
	a, ok := r.adapters[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedPaymentMethod, method)
	}
	return a, nil
}

// Methods lists the registered methods in order.
func (r *Router) Methods() []string {
	methods := make([]string, 0, len(r.adapters))
	for m := range r.adapters {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

func (r *Router) Name() string { return "router" }

func (r *Router) Charge(ctx context.Context, req Request) (*Result, error) {
	a, err := r.Resolve(req.Method)
	if err != nil {
		return nil, err
	}
	return a.Charge(ctx, req)
}

func (r *Router) Payout(ctx context.Context, req Request) (*Result, error) {
	a, err := r.Resolve(req.Method)
	if err != nil {
		return nil, err
	}
	return a.Payout(ctx, req)
}
