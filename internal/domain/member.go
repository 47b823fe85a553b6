package domain

import "time"

// MemberID is the opaque, globally unique identifier of a chat user.
type MemberID int64

// Member is a registered user. A member belongs to at most one group.
type Member struct {
	ID           MemberID  `json:"id"`
	GroupName    string    `json:"group_name"`
	IsLeader     bool      `json:"is_leader"`
	RegisteredAt time.Time `json:"registered_at"`
}

func NewMember(id MemberID, groupName string, isLeader bool) *Member {
	return &Member{
		ID:           id,
		GroupName:    groupName,
		IsLeader:     isLeader,
		RegisteredAt: time.Now().UTC(),
	}
}

// HasGroup reports whether the member has been assigned to a group.
func (m *Member) HasGroup() bool {
	return m != nil && m.GroupName != ""
}

// Clone returns a copy safe to hand out of a store.
func (m *Member) Clone() *Member {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}
