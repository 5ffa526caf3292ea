package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"expressbuy/internal/domain"
	"expressbuy/internal/events"
	applog "expressbuy/internal/log"
	"expressbuy/internal/payment"
	"expressbuy/internal/repos"
)

const publishTimeout = 2 * time.Second

// OutcomeRecorder counts checkout transitions; metrics.Metrics satisfies it.
type OutcomeRecorder interface {
	CheckoutStatus(status string)
}

type CheckoutService struct {
	Users    *repos.UserRepo
	Carts    *repos.CartRepo
	Txns     *repos.TransactionRepo
	Gateway  payment.Gateway
	Events   events.Publisher
	Outcomes OutcomeRecorder
}

func NewCheckoutService(users *repos.UserRepo, carts *repos.CartRepo, txns *repos.TransactionRepo,
	gw payment.Gateway, pub events.Publisher, outcomes OutcomeRecorder) *CheckoutService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &CheckoutService{Users: users, Carts: carts, Txns: txns, Gateway: gw, Events: pub, Outcomes: outcomes}
}

// Initialization is the gateway authorization plus the Pending record created for it.
type Initialization struct {
	Payment     payment.Authorization
	Transaction *domain.Transaction
}

// Initialize charges the cart's current grand total. Nothing is persisted unless the
// gateway hands back a reference.
func (s *CheckoutService) Initialize(ctx context.Context, userID string) (*Initialization, error) {
	u, err := s.Users.ByID(userID)
	if err != nil {
		return nil, missing(err, "User not found")
	}
	cart, err := s.Carts.ByUser(userID)
	if err != nil {
		return nil, missing(err, "Cart not found")
	}
	if cart.IsEmpty() {
		return nil, invalid("Cart is empty")
	}

	auth, err := s.Gateway.Initialize(ctx, cart.GrandTotal, u.Email)
	if err != nil {
		return nil, upstream("Unable to initialize payment", err)
	}
	if auth.Reference == "" {
		return nil, upstream("Unable to initialize payment", errors.New("gateway returned no reference"))
	}

	t := &domain.Transaction{
		Reference: auth.Reference,
		UserID:    u.ID,
		Amount:    cart.GrandTotal,
		Email:     u.Email,
		Status:    domain.StatusPending,
	}
	if err := s.Txns.Create(t); err != nil {
		return nil, err
	}
	s.emit(ctx, events.TransactionPending, t)
	return &Initialization{Payment: auth, Transaction: t}, nil
}

// Finalize verifies reference with the gateway and moves its record out of Pending.
// A verified payment also clears the cart. The returned record's Status tells the
// caller which way it went; a gateway error leaves the record Pending.
func (s *CheckoutService) Finalize(ctx context.Context, userID, reference string) (*domain.Transaction, error) {
	if _, err := s.Carts.ByUser(userID); err != nil {
		return nil, missing(err, "Cart not found")
	}
	t, err := s.Txns.ByReference(reference)
	if err != nil {
		return nil, missing(err, "Transaction not found")
	}
	if t.UserID != userID {
		return nil, notFound("Transaction not found")
	}
	if t.Status.IsTerminal() {
		return nil, conflict("Transaction already " + string(t.Status))
	}

	v, err := s.Gateway.Verify(ctx, reference)
	if err != nil {
		return nil, upstream("Unable to verify payment", err)
	}

	status := domain.StatusFailed
	if v.Paid {
		status = domain.StatusSuccess
	}
	t, err = s.Txns.Resolve(reference, status)
	if err != nil {
		if errors.Is(err, repos.ErrStale) {
			return nil, conflict("Transaction already resolved")
		}
		return nil, err
	}

	if status == domain.StatusSuccess {
		if err := s.clearCart(userID); err != nil {
			applog.Error(nil, "checkout.cart.clear.fail", err, map[string]any{"reference": reference, "user_id": userID})
			return nil, err
		}
		s.emit(ctx, events.TransactionSuccess, t)
	} else {
		s.emit(ctx, events.TransactionFailed, t)
	}
	return t, nil
}

// History lists the user's transactions, newest first.
func (s *CheckoutService) History(userID string) ([]domain.Transaction, error) {
	return s.Txns.ListByUser(userID)
}

// clearCart reloads and retries when a concurrent cart write wins the version race;
// the payment is already captured so the cart has to end up empty.
func (s *CheckoutService) clearCart(userID string) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		var cart *domain.Cart
		cart, err = s.Carts.ByUser(userID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		cart.Clear()
		if err = s.Carts.Save(cart); !errors.Is(err, repos.ErrStale) {
			return err
		}
	}
	return err
}

func (s *CheckoutService) emit(ctx context.Context, typ string, t *domain.Transaction) {
	if s.Outcomes != nil {
		s.Outcomes.CheckoutStatus(string(t.Status))
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	e := events.Event{Type: typ, Reference: t.Reference, UserID: t.UserID, Amount: t.Amount, Status: string(t.Status)}
	if err := s.Events.Publish(ctx, e); err != nil {
		applog.Error(nil, "checkout.event.publish.fail", err, map[string]any{"type": typ, "reference": t.Reference})
	}
}
