package handlers

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kvitka-shop/flower-bot/models"
)

const replyFallback = "Вибачте, я не зміг обробити ваше повідомлення. Спробуйте ще раз пізніше."

// DialogHandler routes every inbound event of a turn. Routing is a
// priority list, not a transition matrix: a pinned state dispatches to
// its handler regardless of message content, and only unconstrained
// sessions go through intent classification.
type DialogHandler struct {
	oracle  Oracle
	flowers *FlowerCatalogHandler
	logger  *zap.Logger
}

func NewDialogHandler(oracle Oracle, flowers *FlowerCatalogHandler) *DialogHandler {
	return &DialogHandler{
		oracle:  oracle,
		flowers: flowers,
		logger:  zap.L(),
	}
}

// HandleText processes one inbound text message against the session.
func (h *DialogHandler) HandleText(ctx context.Context, sess *models.SessionState, out Responder, text string) error {
	// State pins override classification: once a structured sub-flow has
	// started, free text must not hijack it.
	switch sess.State {
	case models.StateAwaitingBouquetChoice:
		return h.flowers.HandleBouquetChoice(ctx, sess, out, text)
	case models.StateAwaitingCustomBouquet:
		return h.flowers.HandleCustomBouquet(ctx, sess, out, text)
	case models.StateAwaitingPurchaseConfirm:
		return h.flowers.ConfirmPurchase(ctx, sess, out, text)
	}

	result, err := h.oracle.ClassifyIntent(ctx, text, sess.Stage())
	if err != nil {
		h.logger.Error("Intent classification failed",
			zap.String("session_id", sess.ID),
			zap.Error(err))
		return out.SendText(ctx, replyFallback)
	}

	h.logger.Info("Message classified",
		zap.String("session_id", sess.ID),
		zap.String("classification", result.Classification))

	var dispatchErr error
	switch result.Classification {
	case models.IntentCatalog, models.IntentHelp, models.IntentSpecificQuery:
		dispatchErr = h.flowers.ShowCatalog(ctx, out, 1)
	case models.IntentAvailability:
		dispatchErr = h.flowers.CheckAvailability(ctx, out, result.AdditionalInfo)
	case models.IntentSuggestBouquet:
		dispatchErr = h.flowers.SuggestBouquetOptions(ctx, sess, out)
	case models.IntentCustomBouquet:
		dispatchErr = h.flowers.StartCustomBouquet(ctx, sess, out)
	default:
		reply, err := h.oracle.GenerateReply(ctx, text, result.Classification, sess.Stage())
		if err != nil || reply == "" {
			h.logger.Warn("Failed to generate reply", zap.Error(err))
			dispatchErr = out.SendText(ctx, replyServerUnavailable)
		} else {
			dispatchErr = out.SendText(ctx, reply)
		}
	}
	if dispatchErr != nil {
		return dispatchErr
	}

	sess.LastMessage = text
	sess.Classification = result.Classification
	if result.Classification == models.IntentOrderStart {
		sess.DialogStage = models.StageBouquetProcessing
	} else {
		sess.DialogStage = models.StageContinued
	}
	return nil
}

// HandleCallback routes button events by their fixed payload prefix.
func (h *DialogHandler) HandleCallback(ctx context.Context, sess *models.SessionState, out Responder, payload string) error {
	switch {
	case strings.HasPrefix(payload, "flowers_page_"):
		page, err := strconv.Atoi(strings.TrimPrefix(payload, "flowers_page_"))
		if err != nil {
			h.logger.Warn("Bad pagination payload", zap.String("payload", payload))
			return nil
		}
		return h.flowers.ShowCatalog(ctx, out, page)

	case strings.HasPrefix(payload, "flower_info_"):
		id, err := strconv.Atoi(strings.TrimPrefix(payload, "flower_info_"))
		if err != nil {
			h.logger.Warn("Bad flower info payload", zap.String("payload", payload))
			return nil
		}
		return h.flowers.ShowFlowerDetails(ctx, out, id)

	default:
		h.logger.Warn("Unknown callback payload", zap.String("payload", payload))
		return nil
	}
}
