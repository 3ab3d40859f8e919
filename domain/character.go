package domain

// Character is static display metadata for one interlocutor.
type Character struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	NameKorean   string `json:"name_korean"`
	Description  string `json:"description"`
	Relationship string `json:"relationship"`
	IsAvailable  bool   `json:"is_available"`
}
