package models

// Group is a small friend-group. Membership management is owned elsewhere;
// this side only reads the member list.
type Group struct {
	ID      string        `db:"id" json:"id"`
	Nombre  string        `db:"nombre" json:"nombre"`
	Members []GroupMember `db:"-" json:"members"`
}

// GroupMember is one member of a group.
type GroupMember struct {
	GroupID  string `db:"group_id" json:"-"`
	UserID   string `db:"user_id" json:"user_id"`
	UserName string `db:"user_name" json:"user_name"`
}
