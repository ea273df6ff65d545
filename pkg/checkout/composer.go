// Package checkout turns a cart and the checkout form into a placed order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"julianmorley.ca/con-plar/storefront/pkg/cart"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrOrderNotCreated     = errors.New("order was not created")
	ErrLineItemsNotCreated = errors.New("order items were not created")
	ErrIncompleteForm      = errors.New("customer details are incomplete")
)

// FormError names the customer fields left blank.
type FormError struct {
	Fields []string
}

func (e *FormError) Error() string {
	return fmt.Sprintf("%v: %s", ErrIncompleteForm, strings.Join(e.Fields, ", "))
}

func (e *FormError) Unwrap() error {
	return ErrIncompleteForm
}

// OrderSink writes to the orders and order_items tables.
type OrderSink interface {
	// CreateOrder inserts the order and returns the id assigned by the store.
	CreateOrder(ctx context.Context, order models.OrderRequest) (string, error)
	CreateOrderItems(ctx context.Context, items []models.OrderLineItem) error
}

// Compensator is implemented by sinks that can remove an order whose items
// failed to insert.
type Compensator interface {
	DeleteOrder(ctx context.Context, orderID string) error
}

// AtomicSink writes the order and its items in one transaction. The items
// passed in carry no order id; the sink fills it in.
type AtomicSink interface {
	PlaceOrder(ctx context.Context, order models.OrderRequest, items []models.OrderLineItem) (string, error)
}

type Stage string

const (
	StageOrder     Stage = "order"
	StageLineItems Stage = "line_items"
)

// SubmitError reports which write failed. For StageLineItems the order row
// exists unless Compensated is true.
type SubmitError struct {
	Stage       Stage
	OrderID     string
	Compensated bool
	Cause       error
}

func (e *SubmitError) Error() string {
	switch {
	case e.Stage == StageOrder:
		return fmt.Sprintf("%v: %v", ErrOrderNotCreated, e.Cause)
	case e.Compensated:
		return fmt.Sprintf("%v for order %s (order removed): %v", ErrLineItemsNotCreated, e.OrderID, e.Cause)
	default:
		return fmt.Sprintf("%v for order %s (order left without items): %v", ErrLineItemsNotCreated, e.OrderID, e.Cause)
	}
}

func (e *SubmitError) Unwrap() []error {
	if e.Stage == StageOrder {
		return []error{ErrOrderNotCreated, e.Cause}
	}
	return []error{ErrLineItemsNotCreated, e.Cause}
}

// Partial reports an order row that was written without its items.
func (e *SubmitError) Partial() bool {
	return e.Stage == StageLineItems && !e.Compensated
}

type Receipt struct {
	OrderID   string          `json:"order_id"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

type Composer struct {
	sink OrderSink
}

func NewComposer(sink OrderSink) *Composer {
	return &Composer{sink: sink}
}

// Submit places an order for the current cart contents. The form is trimmed
// and every field must be non-blank. The cart is never modified; clearing it
// after success is up to the caller.
func (c *Composer) Submit(ctx context.Context, shoppingCart *cart.Cart, form models.CustomerForm) (*Receipt, error) {
	if shoppingCart == nil || shoppingCart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	form = form.Trimmed()
	if fields := form.EmptyFields(); len(fields) > 0 {
		return nil, &FormError{Fields: fields}
	}

	total := shoppingCart.Total()
	order := models.NewOrderRequest(form, total)
	items := models.NewOrderLineItems("", shoppingCart.Lines())

	var (
		orderID string
		err     error
	)
	if atomic, ok := c.sink.(AtomicSink); ok {
		orderID, err = atomic.PlaceOrder(ctx, order, items)
		if err != nil {
			log.Printf("Error placing order: %v", err)
			return nil, &SubmitError{Stage: StageOrder, Cause: err}
		}
	} else {
		orderID, err = c.placeInSteps(ctx, order, items)
		if err != nil {
			return nil, err
		}
	}

	log.Printf("Order %s placed: %d items, total %s", orderID, shoppingCart.ItemCount(), total.StringFixed(2))
	return &Receipt{OrderID: orderID, Total: total, ItemCount: shoppingCart.ItemCount()}, nil
}

func (c *Composer) placeInSteps(ctx context.Context, order models.OrderRequest, items []models.OrderLineItem) (string, error) {
	orderID, err := c.sink.CreateOrder(ctx, order)
	if err != nil {
		log.Printf("Error creating order: %v", err)
		return "", &SubmitError{Stage: StageOrder, Cause: err}
	}

	if err := c.sink.CreateOrderItems(ctx, models.WithOrderID(items, orderID)); err != nil {
		log.Printf("Error creating items for order %s: %v", orderID, err)
		submitErr := &SubmitError{Stage: StageLineItems, OrderID: orderID, Cause: err}

		if compensator, ok := c.sink.(Compensator); ok {
			if delErr := compensator.DeleteOrder(context.WithoutCancel(ctx), orderID); delErr != nil {
				log.Printf("Error removing order %s after failed items: %v", orderID, delErr)
			} else {
				submitErr.Compensated = true
			}
		}
		if submitErr.Partial() {
			log.Printf("Warning: order %s was stored without items", orderID)
		}
		return "", submitErr
	}

	return orderID, nil
}
