package domain

import "time"

// CommandContext describes where a command came from and who sent it.
type CommandContext struct {
	Room      string
	SenderID  MemberID
	Sender    string
	Message   string
	Timestamp time.Time
}

func NewCommandContext(room string, senderID MemberID, sender, message string) *CommandContext {
	return &CommandContext{
		Room:      room,
		SenderID:  senderID,
		Sender:    sender,
		Message:   message,
		Timestamp: time.Now(),
	}
}
