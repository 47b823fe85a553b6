package domain

import "time"

// Group is a named set of members. Names are unique and case-sensitive.
type Group struct {
	Name      string    `json:"name"`
	CreatedBy MemberID  `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func NewGroup(name string, createdBy MemberID) *Group {
	return &Group{
		Name:      name,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
}
