package models

// MemberInfo is a BGG member resolved to a printable name.
type MemberInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// ItemInfo is a traded item resolved to a printable title.
type ItemInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}
