package models

// NavigateRequest selects the storefront section to show.
type NavigateRequest struct {
	Section string `json:"section" binding:"required"`
}
