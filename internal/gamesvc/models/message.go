package models

// ChatMessage is an ordinary message posted in a group channel.
type ChatMessage struct {
	GroupID   string `json:"group"`
	ChannelID string `json:"channel"`
	AuthorID  string `json:"author"`
	Content   string `json:"content"`
	Link      string `json:"link"` // Permalink of the message
}
