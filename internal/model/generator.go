package model

// GenerateRequest represents a password generation request.
// Pointer bools allow distinguishing between missing (nil -> profile or default) and explicit false.
type GenerateRequest struct {
	Profile   string `json:"profile"`
	Length    int    `json:"length"`
	Lowercase *bool  `json:"lowercase"`
	Uppercase *bool  `json:"uppercase"`
	Digits    *bool  `json:"digits"`
	Symbols   *bool  `json:"symbols"`
}

// GenerateResponse represents a password generation response.
type GenerateResponse struct {
	Password string `json:"password"`
	Length   int    `json:"length"`
	Score    int    `json:"score"`
	MaxScore int    `json:"max_score"`
}

// ProfileResponse describes a generation preset.
type ProfileResponse struct {
	Name    string   `json:"name"`
	Length  int      `json:"length,omitempty"`
	Classes []string `json:"classes,omitempty"`
}
