package domain

// Part is an ordered group of consecutive dialogue lines revealed together.
type Part []string

// Scenario is the full scripted dialogue of one character, composed of
// ordered Parts. Authoring order is the only valid reveal order.
type Scenario struct {
	ID          string `json:"id"`
	CharacterID string `json:"characterId"`
	Parts       []Part `json:"parts"`
}

// TotalLines counts every line across all parts.
func (s Scenario) TotalLines() int {
	total := 0
	for _, part := range s.Parts {
		total += len(part)
	}
	return total
}
