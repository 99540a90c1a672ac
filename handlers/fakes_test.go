package handlers

import (
	"context"

	"github.com/kvitka-shop/flower-bot/models"
	"github.com/kvitka-shop/flower-bot/utils"
)

type fakeCatalog struct {
	flowers []models.Flower

	pageCalls  int
	lastPage   int
	quoteCalls int
}

func (c *fakeCatalog) FetchPage(ctx context.Context, page, perPage int) ([]models.Flower, int, error) {
	c.pageCalls++
	c.lastPage = page
	return c.flowers, len(c.flowers), nil
}

func (c *fakeCatalog) FetchNames(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(c.flowers))
	for _, f := range c.flowers {
		names = append(names, f.Name)
	}
	return names, nil
}

func (c *fakeCatalog) FetchByName(ctx context.Context, name string) (*models.Flower, error) {
	for i := range c.flowers {
		if c.flowers[i].Name == name {
			return &c.flowers[i], nil
		}
	}
	return nil, utils.ErrNotFound
}

func (c *fakeCatalog) FetchByID(ctx context.Context, id int) (*models.Flower, error) {
	for i := range c.flowers {
		if c.flowers[i].ID == id {
			return &c.flowers[i], nil
		}
	}
	return nil, utils.ErrNotFound
}

func (c *fakeCatalog) QuotePrice(ctx context.Context, flowers map[string]int) (*models.PriceQuote, error) {
	c.quoteCalls++

	quote := &models.PriceQuote{Flowers: make(map[string]models.FlowerLine)}
	for name, quantity := range flowers {
		record, err := c.FetchByName(ctx, name)
		if err != nil {
			return nil, &utils.QuoteError{Flower: name, Available: -1}
		}
		if record.Quantity < quantity {
			return nil, &utils.QuoteError{Flower: name, Available: record.Quantity}
		}
		line := models.FlowerLine{
			Quantity:  quantity,
			UnitPrice: record.Price,
			LineTotal: record.Price * float64(quantity),
		}
		quote.Flowers[name] = line
		quote.TotalPrice += line.LineTotal
	}
	return quote, nil
}

func (c *fakeCatalog) PhotoURL(photo string) string {
	return "http://catalog.test/media/" + photo
}

type fakeOracle struct {
	completions    []string // popped in order by Complete
	completeErr    error
	classifyResult *models.IntentResult
	classifyErr    error
	reply          string

	completeCalls int
	classifyCalls int
}

func (o *fakeOracle) Complete(ctx context.Context, prompt string) (string, error) {
	o.completeCalls++
	if o.completeErr != nil {
		return "", o.completeErr
	}
	if len(o.completions) == 0 {
		return "", nil
	}
	next := o.completions[0]
	o.completions = o.completions[1:]
	return next, nil
}

func (o *fakeOracle) ClassifyIntent(ctx context.Context, userMessage, dialogStage string) (*models.IntentResult, error) {
	o.classifyCalls++
	if o.classifyErr != nil {
		return nil, o.classifyErr
	}
	return o.classifyResult, nil
}

func (o *fakeOracle) GenerateReply(ctx context.Context, userMessage, classification, dialogStage string) (string, error) {
	return o.reply, nil
}

type fakeWeather struct {
	description string
	err         error
}

func (w *fakeWeather) Current(ctx context.Context) (string, error) {
	return w.description, w.err
}

type fakeResponder struct {
	texts     []string
	photos    []string
	keyboards []string
	sendErr   error
}

func (r *fakeResponder) SendText(ctx context.Context, text string) error {
	if r.sendErr != nil {
		return r.sendErr
	}
	r.texts = append(r.texts, text)
	return nil
}

func (r *fakeResponder) SendPhoto(ctx context.Context, photoURL, caption string) error {
	if r.sendErr != nil {
		return r.sendErr
	}
	r.photos = append(r.photos, photoURL)
	return nil
}

func (r *fakeResponder) SendKeyboard(ctx context.Context, text string, buttons [][]Button) error {
	if r.sendErr != nil {
		return r.sendErr
	}
	r.keyboards = append(r.keyboards, text)
	return nil
}

func (r *fakeResponder) lastText() string {
	if len(r.texts) == 0 {
		return ""
	}
	return r.texts[len(r.texts)-1]
}
