package receipt

import (
	"fmt"
)

// Ledger is the editable in-memory view over the most recent scan. It is
// the only writer of the overlay slot: every mutation writes the full item
// list through to the store immediately. Hosting screens call Load on
// activation rather than keeping their own copy of the items.
type Ledger struct {
	store    Store
	items    []Item
	modified bool
}

// NewLedger creates a Ledger over the given store. Call Load before use.
func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// Load rebuilds the ledger from the store. The overlay, when present, takes
// precedence over the raw slot's parse; with neither present the ledger is
// empty.
func (l *Ledger) Load() error {
	overlay, present, err := l.store.GetOverlay()
	if err != nil {
		return fmt.Errorf("loading overlay: %w", err)
	}
	if present {
		l.items = overlay
		l.modified = true
		return nil
	}

	raw, present, err := l.store.GetRaw()
	if err != nil {
		return fmt.Errorf("loading raw result: %w", err)
	}
	if !present {
		l.items = []Item{}
		l.modified = false
		return nil
	}

	l.items = ParseItems(raw)
	l.modified = false
	return nil
}

// Items returns a copy of the current item list.
func (l *Ledger) Items() []Item {
	items := make([]Item, len(l.items))
	copy(items, l.items)
	return items
}

// IsModified reports whether the ledger diverges from the raw scan result.
func (l *Ledger) IsModified() bool {
	return l.modified
}

// Len returns the number of items in the ledger.
func (l *Ledger) Len() int {
	return len(l.items)
}

// Total recomputes the running total from the current items on every call.
func (l *Ledger) Total() float64 {
	return ItemsTotal(l.items)
}

// UpdateName renames the item at index and persists the change.
func (l *Ledger) UpdateName(index int, name string) error {
	if err := l.checkIndex(index); err != nil {
		return err
	}
	l.items[index].Name = name
	return l.writeThrough()
}

// UpdatePrice replaces the display price of the item at index and persists
// the change. The string is stored as given; validation happens only when
// totals are computed.
func (l *Ledger) UpdatePrice(index int, price string) error {
	if err := l.checkIndex(index); err != nil {
		return err
	}
	l.items[index].Price = price
	return l.writeThrough()
}

// UpdateQuantity adjusts the quantity of the item at index by delta,
// clamped to a minimum of 1, and persists the change.
func (l *Ledger) UpdateQuantity(index int, delta int) error {
	if err := l.checkIndex(index); err != nil {
		return err
	}
	q := l.items[index].Quantity + delta
	if q < 1 {
		q = 1
	}
	l.items[index].Quantity = q
	return l.writeThrough()
}

// DeleteItem removes the item at index and persists the change.
func (l *Ledger) DeleteItem(index int) error {
	if err := l.checkIndex(index); err != nil {
		return err
	}
	l.items = append(l.items[:index], l.items[index+1:]...)
	return l.writeThrough()
}

// ResetToOriginal discards edits: the ledger reverts to the raw slot's
// parse and the overlay slot is removed rather than rewritten.
func (l *Ledger) ResetToOriginal() error {
	if err := l.store.ClearOverlay(); err != nil {
		return fmt.Errorf("clearing overlay: %w", err)
	}

	raw, present, err := l.store.GetRaw()
	if err != nil {
		return fmt.Errorf("loading raw result: %w", err)
	}
	if !present {
		l.items = []Item{}
	} else {
		l.items = ParseItems(raw)
	}
	l.modified = false
	return nil
}

func (l *Ledger) checkIndex(index int) error {
	if index < 0 || index >= len(l.items) {
		return fmt.Errorf("item index out of range: %d", index)
	}
	return nil
}

// writeThrough persists the whole item list to the overlay slot. Receipts
// are small, so a full rewrite per edit is fine.
func (l *Ledger) writeThrough() error {
	if err := l.store.SetOverlay(l.items); err != nil {
		return fmt.Errorf("saving overlay: %w", err)
	}
	l.modified = true
	return nil
}
