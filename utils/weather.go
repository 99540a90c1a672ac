package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"go.uber.org/zap"
)

var errNoConditions = errors.New("weather data does not contain conditions")

// WeatherClient fetches current conditions for the shop's delivery area.
type WeatherClient struct {
	APIKey   string
	Location string
	Client   *http.Client
}

func NewWeatherClient() *WeatherClient {
	location := os.Getenv("WEATHER_LOCATION")
	if location == "" {
		location = "Kyiv"
	}

	return &WeatherClient{
		APIKey:   os.Getenv("WEATHER_API_KEY"),
		Location: location,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Current returns the raw conditions description, e.g. "clear sky".
func (c *WeatherClient) Current(ctx context.Context) (string, error) {
	query := url.Values{}
	query.Set("q", c.Location)
	query.Set("appid", c.APIKey)
	query.Set("lang", "ua")
	query.Set("units", "metric")

	endpoint := "http://api.openweathermap.org/data/2.5/weather?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		zap.L().Error("Weather request failed", zap.Error(err))
		return "", fmt.Errorf("failed to fetch weather: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read weather response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		zap.L().Error("Weather API returned error status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", bodyBytes))
		return "", fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var payload struct {
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	}
	if err := json.Unmarshal(bodyBytes, &payload); err != nil {
		return "", fmt.Errorf("failed to unmarshal weather response: %w", err)
	}

	if len(payload.Weather) == 0 {
		zap.L().Error("Weather response missing conditions", zap.ByteString("body", bodyBytes))
		return "", errNoConditions
	}

	zap.L().Debug("Weather conditions", zap.String("description", payload.Weather[0].Description))
	return payload.Weather[0].Description, nil
}
