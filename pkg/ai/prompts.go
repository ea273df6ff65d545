package ai

import (
	"encoding/json"
	"fmt"

	"julianmorley.ca/con-plar/storefront/pkg/catalog"
)

const CatalogReportSystemPrompt = `You are an inventory assistant for a small online shop selling books and stationery.
Analyze the catalog stock summary and provide short operational insights on:
- Products to restock first and why
- Categories with thin or uneven inventory
- Inventory value concentration
Keep responses to 2-3 short paragraphs in plain language for the shop owner.`

func formatCatalogSummaryPrompt(summary catalog.Summary) (string, error) {
	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode catalog summary: %w", err)
	}
	return fmt.Sprintf(`Analyze the following catalog stock summary. Products with stock below %d count as low stock.

%s

Please provide:
1. Which products need restocking most urgently
2. How balanced inventory is across categories
3. One concrete next step for this week`, summary.LowStockThreshold, string(jsonData)), nil
}
