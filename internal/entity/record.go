package entity

// SessionRecord is the persisted form of a game session. It carries no in-flight request state.
type SessionRecord struct {
	ClientID    string  `json:"clientId"`
	SessionID   string  `json:"sessionId,omitempty"`
	Started     bool    `json:"started"`
	Finished    bool    `json:"finished"`
	Fatal       bool    `json:"fatal,omitempty"`
	HumanPlayer Side    `json:"humanPlayer"`
	Turn        Side    `json:"turn"`
	Board       [][]int `json:"board"`
	Options     []Coord `json:"options"`
	BlackScore  int     `json:"blackScore"`
	WhiteScore  int     `json:"whiteScore"`
	LastAction  *Coord  `json:"lastAction,omitempty"`
	Steps       []Step  `json:"steps"`
}
