package storefront

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"julianmorley.ca/con-plar/storefront/pkg/catalog"
	"julianmorley.ca/con-plar/storefront/pkg/checkout"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// Service is the top-level controller of the storefront. Every mutation of a
// session goes through it, one at a time per session.
type Service struct {
	catalog  *catalog.Catalog
	store    SessionStore
	composer *checkout.Composer

	lowStockThreshold int
	submitTimeout     time.Duration
	newID             func() string
	locks             sessionLocks
	submissions       submissions
}

// DefaultSubmitTimeout stays under the default 30s submit flag TTL.
const DefaultSubmitTimeout = 20 * time.Second

type ServiceOption func(*Service)

func WithLowStockThreshold(threshold int) ServiceOption {
	return func(s *Service) {
		s.lowStockThreshold = threshold
	}
}

// WithSubmitTimeout bounds the order writes of one checkout. Keep it below
// the store's submit flag TTL.
func WithSubmitTimeout(timeout time.Duration) ServiceOption {
	return func(s *Service) {
		s.submitTimeout = timeout
	}
}

// WithIDGenerator replaces the uuid generator used for new session ids.
func WithIDGenerator(newID func() string) ServiceOption {
	return func(s *Service) {
		s.newID = newID
	}
}

func NewService(products *catalog.Catalog, store SessionStore, composer *checkout.Composer, opts ...ServiceOption) *Service {
	s := &Service{
		catalog:           products,
		store:             store,
		composer:          composer,
		lowStockThreshold: 10,
		submitTimeout:     DefaultSubmitTimeout,
		newID:             uuid.NewString,
		locks:             sessionLocks{locks: make(map[string]*sessionLock)},
		submissions:       submissions{ids: make(map[string]struct{})},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) LowStockThreshold() int {
	return s.lowStockThreshold
}

// Products returns the current catalog snapshot.
func (s *Service) Products() []models.Product {
	return s.catalog.Products()
}

// NewSession starts a shopper session. The catalog is fetched again when the
// previous fetch left it empty.
func (s *Service) NewSession(ctx context.Context) (State, error) {
	if s.catalog.IsEmpty() {
		s.catalog.Load(ctx)
	}

	session := NewSession(s.newID())
	if err := s.store.Save(ctx, session); err != nil {
		return State{}, err
	}
	return session.State(s.lowStockThreshold), nil
}

func (s *Service) State(ctx context.Context, id string) (State, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return State{}, err
	}
	return s.stateOf(ctx, session), nil
}

// Page is everything one render of the storefront needs.
type Page struct {
	State             State     `json:"state"`
	Listings          []Listing `json:"listings"`
	LowStockThreshold int       `json:"low_stock_threshold"`
}

func (s *Service) Page(ctx context.Context, id string) (Page, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return Page{}, err
	}
	return Page{
		State:             s.stateOf(ctx, session),
		Listings:          session.View.Listings(s.catalog.Products()),
		LowStockThreshold: s.lowStockThreshold,
	}, nil
}

// Listings returns the product lists of the session's active section.
func (s *Service) Listings(ctx context.Context, id string) ([]Listing, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return session.View.Listings(s.catalog.Products()), nil
}

func (s *Service) Navigate(ctx context.Context, id, section string) (State, error) {
	target, err := ParseSection(section)
	if err != nil {
		return State{}, err
	}
	return s.update(ctx, id, false, func(session *Session) error {
		return session.View.Navigate(target)
	})
}

func (s *Service) OpenCart(ctx context.Context, id string) (State, error) {
	return s.update(ctx, id, false, func(session *Session) error {
		session.View.OpenCart()
		return nil
	})
}

func (s *Service) CloseCart(ctx context.Context, id string) (State, error) {
	return s.update(ctx, id, false, func(session *Session) error {
		session.View.CloseCart()
		return nil
	})
}

func (s *Service) OpenCheckout(ctx context.Context, id string) (State, error) {
	return s.update(ctx, id, false, func(session *Session) error {
		session.View.OpenCheckout()
		return nil
	})
}

func (s *Service) CloseCheckout(ctx context.Context, id string) (State, error) {
	return s.update(ctx, id, false, func(session *Session) error {
		session.View.CloseCheckout()
		return nil
	})
}

// AddToCart adds one unit of a catalog product and brings the cart into view.
func (s *Service) AddToCart(ctx context.Context, id, productID string) (State, error) {
	product, err := s.catalog.Find(productID)
	if err != nil {
		return State{}, err
	}
	return s.update(ctx, id, true, func(session *Session) error {
		if err := session.Cart.Add(product); err != nil {
			return err
		}
		session.View.OpenCart()
		return nil
	})
}

func (s *Service) UpdateQuantity(ctx context.Context, id, productID string, quantity int) (State, error) {
	return s.update(ctx, id, true, func(session *Session) error {
		session.Cart.UpdateQuantity(productID, quantity)
		return nil
	})
}

func (s *Service) RemoveFromCart(ctx context.Context, id, productID string) (State, error) {
	return s.update(ctx, id, true, func(session *Session) error {
		session.Cart.Remove(productID)
		return nil
	})
}

func (s *Service) ClearCart(ctx context.Context, id string) (State, error) {
	return s.update(ctx, id, true, func(session *Session) error {
		session.Cart.Clear()
		return nil
	})
}

// Checkout submits the session's cart. Only one submission per session may be
// in flight. On success the cart is emptied, checkout closes and the session
// returns home; on failure the session is left untouched so the shopper can
// retry. Once the order is written Checkout reports success even if the
// session can no longer be updated.
func (s *Service) Checkout(ctx context.Context, id string, form models.CustomerForm) (*checkout.Receipt, error) {
	if !s.submissions.begin(id) {
		return nil, ErrSubmitInProgress
	}
	defer s.submissions.end(id)

	token, acquired, err := s.store.BeginSubmit(ctx, id)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrSubmitInProgress
	}
	defer func() {
		if err := s.store.EndSubmit(context.WithoutCancel(ctx), id, token); err != nil {
			log.Printf("Warning: failed to release submit flag for session %s: %v", id, err)
		}
	}()

	unlock := s.locks.lock(id)
	session, err := s.store.Get(ctx, id)
	unlock()
	if err != nil {
		return nil, err
	}

	// The writes must finish before the submit flag can expire.
	submitCtx, cancel := context.WithTimeout(ctx, s.submitTimeout)
	receipt, err := s.composer.Submit(submitCtx, session.Cart, form)
	cancel()
	if err != nil {
		return nil, err
	}

	s.finishOrder(context.WithoutCancel(ctx), id, receipt)
	return receipt, nil
}

// finishOrder empties the cart and resets the view after a placed order.
// Failures are logged only; the order itself already exists.
func (s *Service) finishOrder(ctx context.Context, id string, receipt *checkout.Receipt) {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.store.Get(ctx, id)
	if err != nil {
		log.Printf("Warning: order %s placed but session %s could not be reloaded: %v", receipt.OrderID, id, err)
		return
	}
	session.Cart.Clear()
	session.View.ResetAfterOrder()
	session.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, session); err != nil {
		log.Printf("Warning: order %s placed but session %s could not be saved: %v", receipt.OrderID, id, err)
	}
}

func (s *Service) update(ctx context.Context, id string, mutatesCart bool, fn func(*Session) error) (State, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	if mutatesCart {
		if s.submissions.active(id) {
			return State{}, ErrSubmitInProgress
		}
		submitting, err := s.store.IsSubmitting(ctx, id)
		if err != nil {
			return State{}, err
		}
		if submitting {
			return State{}, ErrSubmitInProgress
		}
	}

	session, err := s.store.Get(ctx, id)
	if err != nil {
		return State{}, err
	}
	if err := fn(session); err != nil {
		return State{}, err
	}
	session.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, session); err != nil {
		return State{}, err
	}
	return s.stateOf(ctx, session), nil
}

func (s *Service) stateOf(ctx context.Context, session *Session) State {
	state := session.State(s.lowStockThreshold)
	submitting, err := s.store.IsSubmitting(ctx, session.ID)
	if err != nil {
		log.Printf("Warning: failed to read submit flag for session %s: %v", session.ID, err)
	}
	state.Submitting = submitting || s.submissions.active(session.ID)
	return state
}

// submissions tracks the sessions with a checkout running in this process.
// It backs up the store's flag, which can expire under a slow write.
type submissions struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func (s *submissions) begin(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

func (s *submissions) end(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, id)
}

func (s *submissions) active(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// sessionLocks serializes requests for the same session id.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &sessionLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
