package domain

import (
	"time"

	"github.com/google/uuid"
)

// Announcement is the single current notice of a group. Publishing a new one
// replaces it; there is no history.
type Announcement struct {
	ID          string    `json:"id"`
	GroupName   string    `json:"group_name"`
	Body        string    `json:"body"`
	AuthorID    MemberID  `json:"author_id"`
	PublishedAt time.Time `json:"published_at"`
}

func NewAnnouncement(groupName, body string, authorID MemberID) *Announcement {
	return &Announcement{
		ID:          uuid.NewString(),
		GroupName:   groupName,
		Body:        body,
		AuthorID:    authorID,
		PublishedAt: time.Now().UTC(),
	}
}

// Clone returns a copy safe to hand out of a store.
func (a *Announcement) Clone() *Announcement {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
