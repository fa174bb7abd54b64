package models

// TradeRecord is one resolved assignment from the OLWLG official results:
// ToMember receives the item identified by ItemID from FromMember.
// Records are immutable once parsed and keep the order of the source file.
type TradeRecord struct {
	FromMember string `json:"from_member"`
	ToMember   string `json:"to_member"`
	ItemID     string `json:"item_id"`
}
