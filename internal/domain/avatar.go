package domain

// Avatar is the content persona posts are generated for. Only the fields the
// generation prompts read are modeled here; avatar CRUD is an external
// collaborator.
type Avatar struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Niche string `json:"niche"`
	Style string `json:"style"`
}
