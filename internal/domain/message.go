package domain

import "time"

type MessageType string

const (
	MessageUser   MessageType = "USER"
	MessageSystem MessageType = "SYSTEM"
)

// SystemLogin: автор системных сообщений (вход/выход участников).
const SystemLogin = "system"

type ChatMessage struct {
	Login     string      `json:"login"`
	Text      string      `json:"message"`
	Type      MessageType `json:"messageType"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewUserMessage(login, text string, now time.Time) ChatMessage {
	return ChatMessage{
		Login:     login,
		Text:      text,
		Type:      MessageUser,
		Timestamp: now.UTC(),
	}
}

func NewSystemMessage(text string, now time.Time) ChatMessage {
	return ChatMessage{
		Login:     SystemLogin,
		Text:      text,
		Type:      MessageSystem,
		Timestamp: now.UTC(),
	}
}
