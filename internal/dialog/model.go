package dialog

type State string

const (
	StateIdle State = "idle"

	// waiting for an uploaded table
	StateImportIngredients State = "import_ingredients"
	StateImportRecipes     State = "import_recipes"

	// a report was shown; its subject is in Payload["subject"] for the
	// xlsx button
	StateViewCost  State = "view_cost"
	StateViewNeeds State = "view_needs"
	StateViewStock State = "view_stock"
)

// AwaitsFile reports whether the chat is expected to upload a document.
func (s State) AwaitsFile() bool {
	return s == StateImportIngredients || s == StateImportRecipes
}

type Payload map[string]any

type Item struct {
	ChatID  int64
	State   State
	Payload Payload
}
