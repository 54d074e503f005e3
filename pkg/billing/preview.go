package billing

// PriceMap maps price ids to formatted, localized totals such as "$10.00".
type PriceMap map[string]string

// Total returns the formatted total for a price id, or a placeholder when
// the preview had no entry for it.
func (m PriceMap) Total(priceID string) string {
	if total, ok := m[priceID]; ok {
		return total
	}
	return "—"
}
