package domain

type Participant struct {
	Login    string `json:"login"`
	ImageURL string `json:"imageUrl"`
}
