package invoicing

import "strings"

// LotSerial is the mutually exclusive inventory-tracking output of a line:
// at most one of the two codes is ever set.
type LotSerial struct {
	LotCode    string
	SerialCode string
}

// Product category families with lot-code truncation. Cylinder lots keep
// their trailing 8 characters; shell and accessory lots keep the trailing
// 4.
const (
	itemCategoryCylinder  = "GAS"
	itemCategoryShell     = "VO"
	itemCategoryAccessory = "PK"
)

// ResolveLotSerial decides whether a line carries a lot code or a serial
// code. Batch tracking takes priority when both flags are set; a line
// that tracks neither still emits its raw value as a serial. A blank raw
// value yields neither code. The function is pure: catalog flags are
// fetched by the caller beforehand.
func ResolveLotSerial(trackBatch, trackSerial bool, rawValue, itemCategory string) LotSerial {
	raw := strings.TrimSpace(rawValue)
	if raw == "" {
		return LotSerial{}
	}
	if trackBatch {
		return LotSerial{LotCode: truncateLot(raw, itemCategory)}
	}
	// Serial tracking, and the default for untracked items.
	return LotSerial{SerialCode: raw}
}

// truncateLot applies the category-family truncation to a lot code.
func truncateLot(raw, itemCategory string) string {
	switch itemCategory {
	case itemCategoryCylinder:
		return lastN(raw, 8)
	case itemCategoryShell, itemCategoryAccessory:
		return lastN(raw, 4)
	default:
		return raw
	}
}

func lastN(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
