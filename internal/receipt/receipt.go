package receipt

import (
	"strconv"
	"strings"
	"time"
)

// Item is a single line item from a scanned receipt. Price is kept as the
// display-formatted string the extractor produced (currency symbol and all);
// use ParsePrice when a number is needed.
type Item struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}

// Receipt is one finished scan, as shown in the history list. Total is
// computed once when the receipt is created and never recomputed.
type Receipt struct {
	ID    string    `json:"id"`
	Date  time.Time `json:"date"`
	Items []Item    `json:"items"`
	Total float64   `json:"total"`
}

// ParseItems turns the extractor's line-oriented "item, price" text into
// items. Blank lines are skipped and a line with no comma yields no item,
// so fallback strings like "No result found." pass through harmlessly.
// Names may themselves contain commas ("Beans, Black"), so the split point
// is the last comma in the line, not the first.
func ParseItems(text string) []Item {
	items := make([]Item, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		idx := strings.LastIndex(line, ",")
		if idx == -1 {
			continue
		}
		items = append(items, Item{
			Name:     strings.TrimSpace(line[:idx]),
			Price:    strings.TrimSpace(line[idx+1:]),
			Quantity: 1,
		})
	}
	return items
}

// ParsePrice extracts the numeric value from a display-formatted price
// string ("$3.50", "3.50 EUR", "N/A"). Everything but digits, '.' and '-'
// is stripped before parsing. Returns false when nothing numeric remains.
func ParsePrice(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ItemsTotal sums price times quantity over items. Items whose price does
// not parse contribute zero.
func ItemsTotal(items []Item) float64 {
	var total float64
	for _, item := range items {
		price, ok := ParsePrice(item.Price)
		if !ok {
			continue
		}
		total += price * float64(item.Quantity)
	}
	return total
}
