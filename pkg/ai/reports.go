package ai

import (
	"context"
	"log"
	"time"

	"julianmorley.ca/con-plar/storefront/pkg/catalog"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// AIReportResponse represents the structure of AI-generated reports
type AIReportResponse struct {
	Status      string     `json:"status"`
	Data        ReportData `json:"data"`
	GeneratedAt time.Time  `json:"generated_at"`
	AIEnabled   bool       `json:"ai_enabled"`
}

type ReportData struct {
	RawData    catalog.Summary `json:"raw_data"`
	AIInsights string          `json:"ai_insights,omitempty"`
	Summary    string          `json:"summary"`
	Error      string          `json:"error,omitempty"`
}

// GenerateCatalogReport summarizes stock levels of the given products and,
// when the client is enabled, adds AI-written restocking insights. AI
// failures are reported inside the response and never returned.
func (c *Client) GenerateCatalogReport(ctx context.Context, products []models.Product, lowStockThreshold int) *AIReportResponse {
	summary := catalog.Summarize(products, lowStockThreshold)

	response := &AIReportResponse{
		Status:      "success",
		GeneratedAt: time.Now(),
		AIEnabled:   c.IsEnabled(),
		Data: ReportData{
			RawData: summary,
			Summary: "Catalog stock summary retrieved successfully",
		},
	}

	if !c.IsEnabled() {
		response.Data.Summary = "Raw catalog summary (AI insights unavailable)"
		return response
	}

	prompt, err := formatCatalogSummaryPrompt(summary)
	if err != nil {
		log.Printf("Error building catalog report prompt: %v", err)
		response.Data.Error = "AI analysis failed: " + err.Error()
		return response
	}

	aiInsights, err := c.generateCompletion(ctx, CatalogReportSystemPrompt, prompt)
	if err != nil {
		response.Data.Error = "AI analysis failed: " + err.Error()
		return response
	}
	response.Data.AIInsights = aiInsights
	response.Data.Summary = "AI-generated catalog insights and restocking recommendations"
	return response
}
