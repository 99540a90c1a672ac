package models

import (
	"time"
)

// DialogState pins the next inbound message to a specific handler.
// An empty state means the message goes through intent classification.
type DialogState string

const (
	StateInitial                 DialogState = ""
	StateAwaitingBouquetChoice   DialogState = "awaiting_bouquet_choice"
	StateAwaitingCustomBouquet   DialogState = "awaiting_custom_bouquet"
	StateAwaitingPurchaseConfirm DialogState = "awaiting_purchase_confirmation"
)

// Dialog stages fed back into the classifier so it can condition on
// recent context.
const (
	StageInitial           = "initial"
	StageBouquetProcessing = "bouquet_processing"
	StageContinued         = "continued"
)

// SessionState is everything persisted per chat between turns.
type SessionState struct {
	ID             string         `json:"id"`
	State          DialogState    `json:"state"`
	BouquetOptions string         `json:"bouquet_options,omitempty"`
	ChosenBouquet  string         `json:"chosen_bouquet,omitempty"`
	BouquetFlowers map[string]int `json:"bouquet_flowers,omitempty"`
	LastMessage    string         `json:"last_message,omitempty"`
	Classification string         `json:"classification,omitempty"`
	DialogStage    string         `json:"dialog_stage,omitempty"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func NewSessionState(id string) *SessionState {
	return &SessionState{
		ID:          id,
		State:       StateInitial,
		DialogStage: StageInitial,
	}
}

// Reset returns the session to a fresh state, keeping only the id.
// Used after a completed or cancelled purchase.
func (s *SessionState) Reset() {
	*s = *NewSessionState(s.ID)
}

func (s *SessionState) Stage() string {
	if s.DialogStage == "" {
		return StageInitial
	}
	return s.DialogStage
}
