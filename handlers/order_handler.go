package handlers

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kvitka-shop/flower-bot/models"
)

// Delivery cost tiers in UAH.
const (
	deliveryCostGoodWeather = 50
	deliveryCostNoWeather   = 70
	deliveryCostBadWeather  = 100
)

// OrderEstimator prices a bouquet against live inventory and produces a
// weather-conditioned delivery quote.
type OrderEstimator struct {
	catalog Catalog
	weather Weather
	logger  *zap.Logger

	now func() time.Time
}

func NewOrderEstimator(catalog Catalog, weather Weather) *OrderEstimator {
	return &OrderEstimator{
		catalog: catalog,
		weather: weather,
		logger:  zap.L(),
		now:     time.Now,
	}
}

// PriceBouquet validates and prices a flower-quantity map. Errors pass
// through from the catalog quote untouched so callers can name the
// offending flower.
func (e *OrderEstimator) PriceBouquet(ctx context.Context, flowers map[string]int) (*models.PriceQuote, error) {
	return e.catalog.QuotePrice(ctx, flowers)
}

// EstimateDelivery returns the delivery cost and ETA for the current
// weather. Tier matching is a substring check against the raw conditions
// description: unrecognized conditions land in the bad-weather tier, and
// the default tier applies only when weather data is absent entirely.
func (e *OrderEstimator) EstimateDelivery(ctx context.Context) models.DeliveryQuote {
	now := e.now()

	description, err := e.weather.Current(ctx)
	if err != nil {
		e.logger.Warn("Weather unavailable, using default delivery tier", zap.Error(err))
		return models.DeliveryQuote{
			Cost: deliveryCostNoWeather,
			ETA:  now.Add(75 * time.Minute),
		}
	}

	if strings.Contains(description, "clear") || strings.Contains(description, "clouds") {
		return models.DeliveryQuote{
			Cost:       deliveryCostGoodWeather,
			ETA:        now.Add(time.Hour),
			Conditions: description,
		}
	}

	return models.DeliveryQuote{
		Cost:       deliveryCostBadWeather,
		ETA:        now.Add(90 * time.Minute),
		Conditions: description,
	}
}
