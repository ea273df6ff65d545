package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/v2/option"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"julianmorley.ca/con-plar/storefront/pkg/catalog"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

func reportProducts() []models.Product {
	return []models.Product{
		{ID: "1", Name: "Atlas", Category: models.CategoryBooks, Price: decimal.RequireFromString("20.00"), Stock: 3},
		{ID: "2", Name: "Pen", Category: models.CategoryStationery, Price: decimal.RequireFromString("1.25"), Stock: 0},
		{ID: "3", Name: "Notebook", Category: models.CategoryStationery, Price: decimal.RequireFromString("4.00"), Stock: 50},
	}
}

func TestNewClientFromEnvDisabledWithoutCredentials(t *testing.T) {
	t.Setenv("AZURE_OPENAI_ENDPOINT", "")
	t.Setenv("AZURE_OPENAI_API_KEY", "")

	client := NewClientFromEnv()

	assert.False(t, client.IsEnabled())
}

func TestGenerateCatalogReportWithoutAI(t *testing.T) {
	client := &Client{}

	report := client.GenerateCatalogReport(context.Background(), reportProducts(), 10)

	assert.Equal(t, "success", report.Status)
	assert.False(t, report.AIEnabled)
	assert.Empty(t, report.Data.AIInsights)
	assert.Equal(t, "Raw catalog summary (AI insights unavailable)", report.Data.Summary)
	assert.Equal(t, 3, report.Data.RawData.TotalProducts)
	require.Len(t, report.Data.RawData.LowStock, 1)
	assert.Equal(t, "Only 3 left", report.Data.RawData.LowStock[0].Label)
	require.Len(t, report.Data.RawData.OutOfStock, 1)
	assert.Equal(t, "Pen", report.Data.RawData.OutOfStock[0].Name)
}

func TestFormatCatalogSummaryPrompt(t *testing.T) {
	summary := catalog.Summarize(reportProducts(), 10)

	prompt, err := formatCatalogSummaryPrompt(summary)

	require.NoError(t, err)
	assert.Contains(t, prompt, "stock below 10")
	assert.Contains(t, prompt, `"total_products": 3`)
	assert.Contains(t, prompt, `"name": "Pen"`)
}

func TestGenerateCatalogReportWithAI(t *testing.T) {
	var requested struct {
		Model    string `json:"model"`
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &requested)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1714550000,
			"model": "storefront-test",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "Restock the Atlas first."}
			}]
		}`))
	}))
	defer server.Close()

	client := NewClient("storefront-test",
		option.WithBaseURL(server.URL+"/"),
		option.WithAPIKey("test-key"),
		option.WithMaxRetries(0),
	)

	report := client.GenerateCatalogReport(context.Background(), reportProducts(), 10)

	assert.True(t, report.AIEnabled)
	assert.Empty(t, report.Data.Error)
	assert.Equal(t, "Restock the Atlas first.", report.Data.AIInsights)
	assert.Equal(t, "storefront-test", requested.Model)
	require.Len(t, requested.Messages, 2)
	assert.Equal(t, "system", requested.Messages[0].Role)
}

func TestGenerateCatalogReportKeepsSummaryWhenAIFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	client := NewClient("storefront-test",
		option.WithBaseURL(server.URL+"/"),
		option.WithAPIKey("wrong"),
		option.WithMaxRetries(0),
	)

	report := client.GenerateCatalogReport(context.Background(), reportProducts(), 10)

	assert.Equal(t, "success", report.Status)
	assert.Contains(t, report.Data.Error, "AI analysis failed")
	assert.Empty(t, report.Data.AIInsights)
	assert.Equal(t, 3, report.Data.RawData.TotalProducts)
}
