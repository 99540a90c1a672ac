package handlers

import (
	"context"

	"github.com/kvitka-shop/flower-bot/models"
)

// Oracle is the natural-language dependency behind a narrow interface.
// It is non-deterministic and carries no schema guarantee; its output is
// validated by the callers, never trusted.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
	ClassifyIntent(ctx context.Context, userMessage, dialogStage string) (*models.IntentResult, error)
	GenerateReply(ctx context.Context, userMessage, classification, dialogStage string) (string, error)
}

// Catalog is the flower shop inventory and pricing service.
type Catalog interface {
	FetchPage(ctx context.Context, page, perPage int) ([]models.Flower, int, error)
	FetchNames(ctx context.Context) ([]string, error)
	FetchByName(ctx context.Context, name string) (*models.Flower, error)
	FetchByID(ctx context.Context, id int) (*models.Flower, error)
	QuotePrice(ctx context.Context, flowers map[string]int) (*models.PriceQuote, error)
	PhotoURL(photo string) string
}

// Weather returns current conditions for the delivery area.
type Weather interface {
	Current(ctx context.Context) (string, error)
}

// Button is one inline keyboard button; Data is the opaque callback
// payload echoed back by the client when pressed.
type Button struct {
	Text string `json:"text"`
	Data string `json:"data"`
}

// Responder is the outbound half of the messaging transport.
type Responder interface {
	SendText(ctx context.Context, text string) error
	SendPhoto(ctx context.Context, photoURL, caption string) error
	SendKeyboard(ctx context.Context, text string, buttons [][]Button) error
}
