// Package checkout converts the cart into an order. A Process is one
// checkout attempt and is not reusable; a retry is a new Process.
package checkout

import (
	"context"
	"errors"
	"strings"

	"github.com/openmerch/storefront/internal/backend"
	"github.com/openmerch/storefront/internal/cache"
	"github.com/openmerch/storefront/internal/models"
)

type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Form is the contact data captured at checkout time. It is free
// text, independent of any stored profile.
type Form struct {
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	ShippingAddress string `json:"shipping_address"`
}

// CartView is what checkout needs from the cart store: the current
// view to decide emptiness, and invalidation once the backend has
// cleared the cart server-side.
type CartView interface {
	GetCart(ctx context.Context) ([]models.EnrichedCartLine, error)
	InvalidateView(ctx context.Context)
}

type Process struct {
	backend backend.Client
	cart    CartView
	cache   *cache.Store
	state   State
}

func NewProcess(b backend.Client, cart CartView, c *cache.Store) *Process {
	return &Process{backend: b, cart: cart, cache: c, state: StateIdle}
}

func (p *Process) State() State { return p.state }

// Run validates and submits exactly once. Validation failures and an
// empty cart abort before the checkout request goes out; a backend
// refusal leaves local cart state untouched so the user may retry
// unchanged (with a fresh Process).
//
// The request carries only the contact fields. The backend reads the
// authoritative cart at commit time, so the resulting order reflects
// the server's view, not the client's possibly stale snapshot. A
// duplicate submit after a lost response may create a second order;
// the contract exposes no idempotency key to dedupe on.
func (p *Process) Run(ctx context.Context, form Form) (string, error) {
	if p.state != StateIdle {
		return "", errors.New("checkout process already used")
	}

	p.state = StateValidating
	if fe := validateForm(form); len(fe) > 0 {
		p.state = StateFailed
		return "", fe
	}

	lines, err := p.cart.GetCart(ctx)
	if err != nil {
		p.state = StateFailed
		return "", err
	}
	if len(lines) == 0 {
		p.state = StateFailed
		return "", models.ErrEmptyCart
	}

	p.state = StateSubmitting
	orderID, err := p.backend.Checkout(ctx, form.CustomerName, form.CustomerEmail, form.ShippingAddress)
	if err != nil {
		p.state = StateFailed
		return "", err
	}

	p.state = StateSucceeded
	// The backend cleared the cart as part of the checkout
	// transaction; drop the local view rather than asserting the new
	// state, and let order listings re-fetch.
	p.cart.InvalidateView(ctx)
	p.cache.Invalidate(cache.KeyOrders)
	return orderID, nil
}

func validateForm(form Form) models.FieldErrors {
	fe := models.FieldErrors{}
	if strings.TrimSpace(form.CustomerName) == "" {
		fe["customer_name"] = "name is required"
	}
	if strings.TrimSpace(form.CustomerEmail) == "" {
		fe["customer_email"] = "email is required"
	} else if !plausibleEmail(form.CustomerEmail) {
		fe["customer_email"] = "invalid email address"
	}
	if strings.TrimSpace(form.ShippingAddress) == "" {
		fe["shipping_address"] = "shipping address is required"
	}
	return fe
}

// plausibleEmail: exactly one @, non-empty local and domain parts,
// and at least one dot in the domain. Deliverability is the mail
// system's problem, not ours.
func plausibleEmail(s string) bool {
	if strings.Count(s, "@") != 1 {
		return false
	}
	at := strings.Index(s, "@")
	local, domain := s[:at], s[at+1:]
	if local == "" || domain == "" {
		return false
	}
	return strings.Contains(domain, ".")
}
