package models

// Nametag joins a trade record with the resolved member and item names.
// It exists only to feed the PDF layout and has no identity of its own.
type Nametag struct {
	Record    TradeRecord
	Recipient MemberInfo
	Sender    MemberInfo
	Item      ItemInfo
}
