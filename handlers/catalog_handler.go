package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kvitka-shop/flower-bot/models"
	"github.com/kvitka-shop/flower-bot/utils"
)

const catalogPerPage = 5

const (
	replyServerUnavailable   = "На жаль, ми не отримали відповіді від сервера. Спробуйте пізніше."
	replyNoFlowersInStock    = "Вибачте, наразі у нас немає квітів у наявності. 🌸"
	replyNoFlowersForBouquet = "Наразі у нас немає квітів для складання букета. Вибачте за незручності. 🌸"
	replyChooseOption        = "Будь ласка, оберіть один із запропонованих варіантів букетів."
	replyExtractionFailed    = "Не вдалося знайти інформацію про квіти. Спробуйте ще раз."
	replyYesNoOnly           = "Будь ласка, відповідайте лише 'так' або 'ні'."
	replyOrderCancelled      = "Ваше замовлення скасовано."
)

// FlowerCatalogHandler implements the flower-facing dialogue handlers:
// catalog browsing, availability checks, bouquet suggestion and
// assembly, and purchase confirmation.
type FlowerCatalogHandler struct {
	catalog   Catalog
	oracle    Oracle
	estimator *OrderEstimator
	logger    *zap.Logger
}

func NewFlowerCatalogHandler(catalog Catalog, oracle Oracle, estimator *OrderEstimator) *FlowerCatalogHandler {
	return &FlowerCatalogHandler{
		catalog:   catalog,
		oracle:    oracle,
		estimator: estimator,
		logger:    zap.L(),
	}
}

// ShowCatalog sends one page of the catalog with an inline keyboard for
// flower details and pagination.
func (h *FlowerCatalogHandler) ShowCatalog(ctx context.Context, out Responder, page int) error {
	flowers, total, err := h.catalog.FetchPage(ctx, page, catalogPerPage)
	if err != nil {
		h.logger.Error("Failed to fetch catalog page", zap.Int("page", page), zap.Error(err))
		return out.SendText(ctx, replyNoFlowersInStock)
	}
	if len(flowers) == 0 {
		return out.SendText(ctx, replyNoFlowersInStock)
	}

	totalPages := (total + catalogPerPage - 1) / catalogPerPage

	var buttons [][]Button
	for _, flower := range flowers {
		buttons = append(buttons, []Button{{
			Text: flower.Name,
			Data: fmt.Sprintf("flower_info_%d", flower.ID),
		}})
	}
	if page > 1 {
		buttons = append(buttons, []Button{{
			Text: "⬅️ Попередня",
			Data: fmt.Sprintf("flowers_page_%d", page-1),
		}})
	}
	if page < totalPages {
		buttons = append(buttons, []Button{{
			Text: "Наступна ➡️",
			Data: fmt.Sprintf("flowers_page_%d", page+1),
		}})
	}

	text := "🌼 Ось каталог квітів, що у нас є! 🌻🌼💛\nОберіть квітку для отримання детальної інформації:"
	return out.SendKeyboard(ctx, text, buttons)
}

// ShowFlowerDetails sends a photo card for one flower by id.
func (h *FlowerCatalogHandler) ShowFlowerDetails(ctx context.Context, out Responder, id int) error {
	flower, err := h.catalog.FetchByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return out.SendText(ctx, "На жаль, ми не маємо такої квітки в наявності. 🌸")
		}
		h.logger.Error("Failed to fetch flower by id", zap.Int("id", id), zap.Error(err))
		return out.SendText(ctx, replyServerUnavailable)
	}

	return out.SendPhoto(ctx, h.catalog.PhotoURL(flower.Photo), flowerCaption(flower))
}

// CheckAvailability answers a "do you have X" question. The oracle
// matches the query against the live name list; each match is sent as a
// photo card.
func (h *FlowerCatalogHandler) CheckAvailability(ctx context.Context, out Responder, query string) error {
	names, err := h.catalog.FetchNames(ctx)
	if err != nil {
		h.logger.Error("Failed to fetch flower names", zap.Error(err))
		return out.SendText(ctx, replyServerUnavailable)
	}

	prompt := fmt.Sprintf(
		"Користувач запитує про квітку '%s'. "+
			"Вибери всі квітки зі списку: %s, які на твою думку підходять під цей запит. "+
			"Поверни лише список відповідних квіток через кому у вигляді рядка. "+
			"Якщо жодна квітка не підходить, поверни порожній рядок.",
		query, strings.Join(names, ", "))

	response, err := h.oracle.Complete(ctx, prompt)
	if err != nil {
		h.logger.Error("Availability matching failed", zap.Error(err))
		return out.SendText(ctx, replyServerUnavailable)
	}
	if strings.TrimSpace(response) == "" {
		return out.SendText(ctx, fmt.Sprintf(
			"😔 На жаль, ми не знайшли жодних квіток за запитом '%s'.\n"+
				"🌼 Але ви можете ознайомитися з нашим асортиментом і знайти інші чудові квіти 💐💛!", query))
	}

	if err := out.SendText(ctx, "🌼 Так, у нас є квіти, які ви хочете! 🌼\nОсь список квітів, що підходять під ваш запит: 🌻🌼💛"); err != nil {
		return err
	}

	for _, name := range strings.Split(response, ", ") {
		flower, err := h.catalog.FetchByName(ctx, strings.TrimSpace(name))
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				if err := out.SendText(ctx, fmt.Sprintf("Квітка '%s' не знайдена в базі.", name)); err != nil {
					return err
				}
				continue
			}
			h.logger.Error("Failed to fetch flower by name", zap.String("name", name), zap.Error(err))
			continue
		}
		if err := out.SendPhoto(ctx, h.catalog.PhotoURL(flower.Photo), flowerCaption(flower)); err != nil {
			return err
		}
	}
	return nil
}

// SuggestBouquetOptions asks the oracle for bouquet ideas from the live
// assortment and pins the session to the choice handler.
func (h *FlowerCatalogHandler) SuggestBouquetOptions(ctx context.Context, sess *models.SessionState, out Responder) error {
	names, err := h.catalog.FetchNames(ctx)
	if err != nil || len(names) == 0 {
		return out.SendText(ctx, replyNoFlowersForBouquet)
	}

	prompt := fmt.Sprintf(
		"Ось список доступних квітів: %s. "+
			"Запропонуй кілька варіантів букетів, вказуючи кількість квіток кожного виду. "+
			"Наприклад: Букет 1: 3 троянди, 2 ромашки, 1 лілія. "+
			"Уникай форматування GPT, тобто не роби списки з ** і додай кілька емоджі для покращення взаємодії.",
		strings.Join(names, ", "))

	response, err := h.oracle.Complete(ctx, prompt)
	if err != nil || response == "" {
		h.logger.Error("Failed to get bouquet suggestions", zap.Error(err))
		return out.SendText(ctx, "На жаль, не вдалося отримати варіанти букетів. Спробуйте пізніше.")
	}

	if err := out.SendText(ctx, fmt.Sprintf("Ось кілька варіантів букетів, які ви можете замовити:\n\n%s 💐", response)); err != nil {
		return err
	}

	sess.BouquetOptions = response
	sess.State = models.StateAwaitingBouquetChoice
	return nil
}

// HandleBouquetChoice resolves which suggested bouquet the user picked,
// extracts its composition, prices it, and asks for confirmation.
func (h *FlowerCatalogHandler) HandleBouquetChoice(ctx context.Context, sess *models.SessionState, out Responder, text string) error {
	prompt := fmt.Sprintf(
		"Користувач вибрав варіант букета: '%s'. "+
			"Який букет з наступних варіантів найбільш схожий на вибір користувача? "+
			"Ось варіанти: %s. Поверни назву вибраного букета.",
		strings.TrimSpace(text), sess.BouquetOptions)

	chosen, err := h.oracle.Complete(ctx, prompt)
	if err != nil || chosen == "" {
		return out.SendText(ctx, replyChooseOption)
	}
	sess.ChosenBouquet = strings.TrimSpace(chosen)

	flowers, err := h.extractBouquet(ctx, sess.ChosenBouquet)
	if err != nil {
		return out.SendText(ctx, replyExtractionFailed)
	}
	sess.BouquetFlowers = flowers

	quote, err := h.estimator.PriceBouquet(ctx, flowers)
	if err != nil {
		return out.SendText(ctx, quoteFailureMessage(err))
	}

	if err := out.SendText(ctx, fmt.Sprintf(
		"Ви обрали букет: %s. Загальна вартість: %.0f грн. "+
			"Ви впевнені, що хочете купити цей букет? (так/ні) 🌹",
		utils.FormatBouquet(flowers), quote.TotalPrice)); err != nil {
		return err
	}

	sess.State = models.StateAwaitingPurchaseConfirm
	return nil
}

// StartCustomBouquet lists the assortment and pins the session to the
// custom-bouquet handler.
func (h *FlowerCatalogHandler) StartCustomBouquet(ctx context.Context, sess *models.SessionState, out Responder) error {
	names, err := h.catalog.FetchNames(ctx)
	if err != nil || len(names) == 0 {
		return out.SendText(ctx, replyNoFlowersForBouquet)
	}

	list := "🌹 " + strings.Join(names, "\n🌸 ")
	if err := out.SendText(ctx, fmt.Sprintf(
		"Ось список доступних квітів:\n\n%s 🌼\n\n"+
			"Напишіть, які квіти та в якій кількості ви хочете додати до свого букета.\n"+
			"Наприклад: '3 🌹 троянди, 2 🌸 ромашки, 1 🌼 лілія'. 💐", list)); err != nil {
		return err
	}

	sess.State = models.StateAwaitingCustomBouquet
	return nil
}

// HandleCustomBouquet extracts the user's own composition, prices it,
// and asks for confirmation.
func (h *FlowerCatalogHandler) HandleCustomBouquet(ctx context.Context, sess *models.SessionState, out Responder, text string) error {
	flowers, err := h.extractBouquet(ctx, strings.TrimSpace(text))
	if err != nil {
		return out.SendText(ctx, replyExtractionFailed)
	}
	sess.BouquetFlowers = flowers

	quote, err := h.estimator.PriceBouquet(ctx, flowers)
	if err != nil {
		return out.SendText(ctx, quoteFailureMessage(err))
	}

	if err := out.SendText(ctx, fmt.Sprintf(
		"Ви обрали кастомний букет: %s. Загальна вартість: %.0f грн. "+
			"Ви впевнені, що хочете купити цей букет? (так/ні) 🌹",
		utils.FormatBouquet(flowers), quote.TotalPrice)); err != nil {
		return err
	}

	sess.State = models.StateAwaitingPurchaseConfirm
	return nil
}

// ConfirmPurchase accepts only так/ні. On так the total and delivery are
// recomputed from the stored flower map, so price and stock changes
// since the proposal are reflected. Either outcome resets the session.
func (h *FlowerCatalogHandler) ConfirmPurchase(ctx context.Context, sess *models.SessionState, out Responder, text string) error {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "так":
		if len(sess.BouquetFlowers) == 0 {
			sess.Reset()
			return out.SendText(ctx, "Ваше замовлення не знайдено. Почнімо спочатку. 🌸")
		}

		quote, err := h.estimator.PriceBouquet(ctx, sess.BouquetFlowers)
		if err != nil {
			return out.SendText(ctx, quoteFailureMessage(err))
		}

		delivery := h.estimator.EstimateDelivery(ctx)
		total := quote.TotalPrice + delivery.Cost
		orderID := uuid.New().String()

		weatherLine := ""
		if delivery.Conditions != "" {
			weatherLine = fmt.Sprintf(" Погода: %s.", delivery.Conditions)
		}

		h.logger.Info("Purchase confirmed",
			zap.String("session_id", sess.ID),
			zap.String("order_id", orderID),
			zap.Float64("total", total))

		if err := out.SendText(ctx, fmt.Sprintf(
			"Замовлення підтверджено! 💐\nБукет: %s.\n"+
				"Вартість квітів: %.0f грн. Вартість доставки: %.0f грн.%s\n"+
				"Загальна сума: %.0f грн.\nЧас доставки: %s.\n"+
				"Номер замовлення: %s. Дякуємо за покупку! 🌹",
			utils.FormatBouquet(sess.BouquetFlowers), quote.TotalPrice, delivery.Cost,
			weatherLine, total, delivery.ETA.Format("15:04"), orderID)); err != nil {
			return err
		}

		sess.Reset()
		return nil

	case "ні":
		if err := out.SendText(ctx, replyOrderCancelled); err != nil {
			return err
		}
		sess.Reset()
		return nil

	default:
		// Unrecognized answer re-prompts without changing state.
		return out.SendText(ctx, replyYesNoOnly)
	}
}

// extractBouquet asks the oracle for the composition of a bouquet in
// the fixed extraction shape and parses it.
func (h *FlowerCatalogHandler) extractBouquet(ctx context.Context, bouquet string) (map[string]int, error) {
	prompt := fmt.Sprintf(
		"Назва букета: %s. Поверни список квітів та кількість кожної квітки в цьому букеті у форматі JSON. "+
			"Обов'язково! Перше слово з великої букви, друге з маленької, наприклад Червона троянда. "+
			"Назви квітів повертай в однині. І якщо в назві є колір, він повинен залишитися в назві. "+
			"Обов'язково треба, щоб воно розпарсилось таким виразом %s",
		bouquet, utils.BouquetPattern)

	response, err := h.oracle.Complete(ctx, prompt)
	if err != nil {
		h.logger.Error("Bouquet extraction request failed", zap.Error(err))
		return nil, err
	}

	h.logger.Debug("Raw bouquet extraction response", zap.String("response", response))

	flowers, err := utils.ParseBouquet(response)
	if err != nil {
		h.logger.Warn("No flowers extracted from oracle response", zap.String("response", response))
		return nil, err
	}
	return flowers, nil
}

func quoteFailureMessage(err error) string {
	var qe *utils.QuoteError
	if errors.As(err, &qe) {
		if qe.Available < 0 {
			return fmt.Sprintf("На жаль, квітки '%s' немає в нашій базі. Спробуйте інший варіант.", qe.Flower)
		}
		return fmt.Sprintf("На жаль, квітки '%s' недостатньо на складі. Доступно: %d. Спробуйте ще раз.", qe.Flower, qe.Available)
	}
	return "Сталася помилка при розрахунку вартості. Спробуйте ще раз."
}

func flowerCaption(flower *models.Flower) string {
	return fmt.Sprintf("%s - %.0f грн 🌻\nКількість: %d 📦\nОпис: %s 📜",
		flower.Name, flower.Price, flower.Quantity, flower.Description)
}
