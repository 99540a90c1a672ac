package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvitka-shop/flower-bot/models"
)

func newTestCatalog(handler http.Handler) (*CatalogClient, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := &CatalogClient{
		BaseURL: server.URL,
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
	return client, server
}

func TestFetchPage(t *testing.T) {
	client, server := newTestCatalog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/resources/all_flowers", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "5", r.URL.Query().Get("per_page"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"flowers": []models.Flower{
				{ID: 6, Name: "Тюльпан", Photo: "tulip.jpg", Quantity: 12, Price: 15},
			},
			"total_flowers": 6,
		})
	}))
	defer server.Close()

	flowers, total, err := client.FetchPage(context.Background(), 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 6, total)
	require.Len(t, flowers, 1)
	assert.Equal(t, "Тюльпан", flowers[0].Name)
}

func TestFetchNames(t *testing.T) {
	client, server := newTestCatalog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/resources/flower_names", r.URL.Path)
		json.NewEncoder(w).Encode(map[string][]string{"flower_names": {"Троянда", "Лілія"}})
	}))
	defer server.Close()

	names, err := client.FetchNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Троянда", "Лілія"}, names)
}

func TestFetchByNameNotFound(t *testing.T) {
	client, server := newTestCatalog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": `Flower with name "Півонія" not found`})
	}))
	defer server.Close()

	_, err := client.FetchByName(context.Background(), "Півонія")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchByNameServerFault(t *testing.T) {
	client, server := newTestCatalog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"message": "An error occurred while processing the request"})
	}))
	defer server.Close()

	_, err := client.FetchByName(context.Background(), "Троянда")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestQuotePrice(t *testing.T) {
	client, server := newTestCatalog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/resources/flower_parse_calculator", r.URL.Path)

		var payload struct {
			Flowers map[string]int `json:"flowers"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, map[string]int{"Троянда": 5}, payload.Flowers)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"total_price": 100.0,
			"flowers": map[string]models.FlowerLine{
				"Троянда": {Quantity: 5, UnitPrice: 20, LineTotal: 100},
			},
		})
	}))
	defer server.Close()

	quote, err := client.QuotePrice(context.Background(), map[string]int{"Троянда": 5})
	require.NoError(t, err)
	assert.Equal(t, float64(100), quote.TotalPrice)
	assert.Equal(t, 5, quote.Flowers["Троянда"].Quantity)
}

func TestQuotePriceInsufficientStock(t *testing.T) {
	client, server := newTestCatalog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"message": `Not enough quantity for flower "Троянда". Available: 3`,
		})
	}))
	defer server.Close()

	_, err := client.QuotePrice(context.Background(), map[string]int{"Троянда": 5})

	var qe *QuoteError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "Троянда", qe.Flower)
	assert.Equal(t, 3, qe.Available)
}

func TestQuotePriceFlowerNotFound(t *testing.T) {
	client, server := newTestCatalog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"message": `Flower "Едельвейс" not found`,
		})
	}))
	defer server.Close()

	_, err := client.QuotePrice(context.Background(), map[string]int{"Едельвейс": 1})

	var qe *QuoteError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "Едельвейс", qe.Flower)
	assert.Equal(t, -1, qe.Available)
}

func TestQuotePriceServerFault(t *testing.T) {
	client, server := newTestCatalog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"message": "boom"})
	}))
	defer server.Close()

	_, err := client.QuotePrice(context.Background(), map[string]int{"Троянда": 1})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestQuotePriceTransportFailure(t *testing.T) {
	client, server := newTestCatalog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused

	_, err := client.QuotePrice(context.Background(), map[string]int{"Троянда": 1})
	assert.ErrorIs(t, err, ErrUnavailable)
}
