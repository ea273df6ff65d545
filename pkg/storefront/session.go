package storefront

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"julianmorley.ca/con-plar/storefront/pkg/cart"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSubmitInProgress = errors.New("an order for this session is already being submitted")
)

// Session is the whole application state of one shopper.
type Session struct {
	ID        string     `json:"id"`
	Cart      *cart.Cart `json:"cart"`
	View      View       `json:"view"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		Cart:      cart.New(),
		View:      NewView(),
		UpdatedAt: time.Now().UTC(),
	}
}

// SessionStore persists sessions between requests.
type SessionStore interface {
	// Get returns ErrSessionNotFound for unknown or expired ids.
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error

	// BeginSubmit sets the in-flight flag for a session and returns the
	// token that owns it; false means a submission is already running.
	BeginSubmit(ctx context.Context, id string) (token string, acquired bool, err error)
	// EndSubmit clears the flag only while it is still owned by token.
	EndSubmit(ctx context.Context, id, token string) error
	IsSubmitting(ctx context.Context, id string) (bool, error)
}

type CartLineView struct {
	Product    models.Product  `json:"product"`
	Quantity   int             `json:"quantity"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	StockLabel string          `json:"stock_label,omitempty"`
}

// State is what the page renders for a session outside the product grid.
type State struct {
	ID         string          `json:"id"`
	View       View            `json:"view"`
	Lines      []CartLineView  `json:"lines"`
	ItemCount  int             `json:"item_count"`
	Total      decimal.Decimal `json:"total"`
	Submitting bool            `json:"submitting"`
}

func (s *Session) State(lowStockThreshold int) State {
	lines := s.Cart.Lines()
	views := make([]CartLineView, 0, len(lines))
	for _, line := range lines {
		views = append(views, CartLineView{
			Product:    line.Product,
			Quantity:   line.Quantity,
			Subtotal:   line.Subtotal(),
			StockLabel: line.Product.StockLabel(lowStockThreshold),
		})
	}
	return State{
		ID:        s.ID,
		View:      s.View,
		Lines:     views,
		ItemCount: s.Cart.ItemCount(),
		Total:     s.Cart.Total(),
	}
}
