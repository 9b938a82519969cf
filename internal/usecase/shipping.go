package usecase

import "strings"

const ShippingNoteContactUs = "contact us for rates"

// 国内は固定送料、それ以外は0円（送料は個別に連絡）
type ShippingPolicy struct {
	DomesticCountry string
	DomesticCost    int64
}

type ShippingQuote struct {
	Cost     int64  `json:"cost"`
	Domestic bool   `json:"domestic"`
	Note     string `json:"note,omitempty"`
}

func (p ShippingPolicy) Quote(country string) ShippingQuote {
	if strings.EqualFold(strings.TrimSpace(country), strings.TrimSpace(p.DomesticCountry)) {
		return ShippingQuote{Cost: p.DomesticCost, Domestic: true}
	}
	return ShippingQuote{Cost: 0, Domestic: false, Note: ShippingNoteContactUs}
}
