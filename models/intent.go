package models

// IntentResult is the classifier's fixed-shape answer for one message.
type IntentResult struct {
	Classification string `json:"classification"`
	AdditionalInfo string `json:"additional_info"`
}

// Intent codes returned by the classifier. The set is closed; anything
// outside it falls through to a generated free-form reply.
const (
	IntentHelp           = "3"  // user asks for help
	IntentSpecificQuery  = "4"  // concrete question about the shop
	IntentAvailability   = "8"  // asks whether a flower is in stock
	IntentCatalog        = "9"  // asks for the assortment
	IntentOrderStart     = "12" // begins placing an order
	IntentSuggestBouquet = "13" // wants bouquet suggestions
	IntentCustomBouquet  = "14" // wants to assemble a bouquet manually
)
