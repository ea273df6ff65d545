package router

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"julianmorley.ca/con-plar/storefront/pkg/ai"
	"julianmorley.ca/con-plar/storefront/pkg/cart"
	"julianmorley.ca/con-plar/storefront/pkg/catalog"
	"julianmorley.ca/con-plar/storefront/pkg/checkout"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/storefront"
)

const (
	OrderPlacedMessage = "Order placed successfully! We will contact you soon."
	OrderFailedMessage = "There was an error placing your order. Please try again."
)

// HealthCheck is one backend pinged by GET /api/health.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type Handler struct {
	service *storefront.Service
	reports *ai.Client
	checks  []HealthCheck
}

func NewHandler(service *storefront.Service, reports *ai.Client, checks ...HealthCheck) *Handler {
	return &Handler{service: service, reports: reports, checks: checks}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	status := map[string]string{"status": "OK"}
	for _, check := range h.checks {
		if err := check.Ping(c.Request.Context()); err != nil {
			log.Printf("Health check %s failed: %v", check.Name, err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse(fmt.Sprintf("%s connection failed", check.Name), nil))
			return
		}
		status[check.Name] = "Connected"
	}
	c.JSON(http.StatusOK, global.SuccessResponse(status))
}

func (h *Handler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, global.SuccessResponse(models.Categories))
}

func (h *Handler) GetProducts(c *gin.Context) {
	products := h.service.Products()

	if raw := c.Query("category"); raw != "" {
		category := models.Category(raw)
		if !category.Valid() {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid category", []global.ValidationError{
				{Field: "category", Message: "Must be one of: books, stationery", Code: "invalid_value"},
			}))
			return
		}
		products = catalog.FilterByCategory(products, category)
	}

	c.Header("X-Total-Count", strconv.Itoa(len(products)))
	c.JSON(http.StatusOK, global.SuccessResponse(products))
}

func (h *Handler) GetCatalogReport(c *gin.Context) {
	report := h.reports.GenerateCatalogReport(c.Request.Context(), h.service.Products(), h.service.LowStockThreshold())
	c.JSON(http.StatusOK, global.SuccessResponse(report))
}

func (h *Handler) CreateSession(c *gin.Context) {
	state, err := h.service.NewSession(c.Request.Context())
	if err != nil {
		log.Printf("Error creating session: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to create session", nil))
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(state))
}

func (h *Handler) GetSession(c *gin.Context) {
	state, err := h.service.State(c.Request.Context(), sessionID(c))
	h.respondState(c, state, err)
}

func (h *Handler) GetStorefront(c *gin.Context) {
	page, err := h.service.Page(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(page))
}

func (h *Handler) Navigate(c *gin.Context) {
	var req models.NavigateRequest
	if !bindJSON(c, &req) {
		return
	}
	state, err := h.service.Navigate(c.Request.Context(), sessionID(c), req.Section)
	h.respondState(c, state, err)
}

func (h *Handler) OpenCart(c *gin.Context) {
	state, err := h.service.OpenCart(c.Request.Context(), sessionID(c))
	h.respondState(c, state, err)
}

func (h *Handler) CloseCart(c *gin.Context) {
	state, err := h.service.CloseCart(c.Request.Context(), sessionID(c))
	h.respondState(c, state, err)
}

func (h *Handler) OpenCheckout(c *gin.Context) {
	state, err := h.service.OpenCheckout(c.Request.Context(), sessionID(c))
	h.respondState(c, state, err)
}

func (h *Handler) CloseCheckout(c *gin.Context) {
	state, err := h.service.CloseCheckout(c.Request.Context(), sessionID(c))
	h.respondState(c, state, err)
}

func (h *Handler) AddToCart(c *gin.Context) {
	var req models.AddToCartRequest
	if !bindJSON(c, &req) {
		return
	}
	state, err := h.service.AddToCart(c.Request.Context(), sessionID(c), req.ProductID)
	h.respondState(c, state, err)
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req models.UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	state, err := h.service.UpdateQuantity(c.Request.Context(), sessionID(c), c.Param("productId"), *req.Quantity)
	h.respondState(c, state, err)
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	state, err := h.service.RemoveFromCart(c.Request.Context(), sessionID(c), c.Param("productId"))
	h.respondState(c, state, err)
}

func (h *Handler) ClearCart(c *gin.Context) {
	state, err := h.service.ClearCart(c.Request.Context(), sessionID(c))
	h.respondState(c, state, err)
}

// PlaceOrder submits the checkout form. Every failure to write the order
// gets the same message; the cause only goes to the log.
func (h *Handler) PlaceOrder(c *gin.Context) {
	var form models.CustomerForm
	if !bindJSON(c, &form) {
		return
	}

	receipt, err := h.service.Checkout(c.Request.Context(), sessionID(c), form)
	if err != nil {
		var formErr *checkout.FormError
		switch {
		case errors.As(err, &formErr):
			fields := make([]global.ValidationError, 0, len(formErr.Fields))
			for _, field := range formErr.Fields {
				fields = append(fields, global.ValidationError{
					Field:   field,
					Message: fmt.Sprintf("%s is required", field),
					Code:    "required",
				})
			}
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", fields))
		case errors.Is(err, storefront.ErrSessionNotFound), errors.Is(err, storefront.ErrSubmitInProgress):
			respondError(c, err)
		case errors.Is(err, checkout.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, global.ErrorResponse(OrderFailedMessage, []global.ValidationError{
				{Field: "cart", Message: "Cart is empty", Code: "empty_cart"},
			}))
		default:
			log.Printf("Error placing order for session %s: %v", sessionID(c), err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse(OrderFailedMessage, nil))
		}
		return
	}

	c.JSON(http.StatusCreated, global.MessageResponse(OrderPlacedMessage, receipt))
}

func (h *Handler) respondState(c *gin.Context, state storefront.State, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(state))
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storefront.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, global.ErrorResponse("Session not found", []global.ValidationError{
			{Field: "sessionId", Message: "No active session with this ID", Code: "not_found"},
		}))
	case errors.Is(err, catalog.ErrProductNotFound):
		c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", []global.ValidationError{
			{Field: "product_id", Message: "No product exists with this ID", Code: "not_found"},
		}))
	case errors.Is(err, cart.ErrOutOfStock):
		c.JSON(http.StatusConflict, global.ErrorResponse("Product is out of stock", []global.ValidationError{
			{Field: "product_id", Message: "This product cannot be added to the cart", Code: "out_of_stock"},
		}))
	case errors.Is(err, storefront.ErrUnknownSection):
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Unknown section", []global.ValidationError{
			{Field: "section", Message: "Must be one of: home, books, stationery, contact", Code: "invalid_value"},
		}))
	case errors.Is(err, storefront.ErrSubmitInProgress):
		c.JSON(http.StatusConflict, global.ErrorResponse("An order is already being placed", []global.ValidationError{
			{Field: "sessionId", Message: "Wait for the current order to finish", Code: "submit_in_progress"},
		}))
	default:
		log.Printf("Error handling session request: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to update session", nil))
	}
}

// bindJSON writes the 400 response itself and reports whether binding worked.
func bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]global.ValidationError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			fields = append(fields, global.ValidationError{
				Field:   fe.Field(),
				Message: validationMessage(fe),
				Code:    fe.Tag(),
			})
		}
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", fields))
		return false
	}

	c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid JSON format", []global.ValidationError{
		{Field: "body", Message: err.Error(), Code: "json_parse_error"},
	}))
	return false
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag())
	}
}
