package receipt

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pantryplan/internal/planning"
	"pantryplan/internal/scanning"
)

// User-facing fallback strings. The extraction sentinel contains no comma,
// so it parses to zero items if it ever reaches the parser.
const (
	NoResultText    = "No result found."
	PlanErrorText   = "Error generating meal plan. Please try again."
	PlanNoItemsText = "No receipt items found. Please scan a receipt first."
)

// IDGenerator generates unique IDs for receipts
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates IDs using UnixNano timestamp
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// ScanResult is what a single scan produces: the raw extraction text, its
// parse, and the history entry if one was created.
type ScanResult struct {
	Text    string   `json:"text"`
	Items   []Item   `json:"items"`
	Receipt *Receipt `json:"receipt,omitempty"`
}

// LedgerView is the ledger state handed to the review screen.
type LedgerView struct {
	Items    []Item  `json:"items"`
	Modified bool    `json:"modified"`
	Total    float64 `json:"total"`
}

// Service wires the receipt pipeline together: extraction, parsing, the
// persisted slots, the editable ledger, and meal plan generation.
type Service struct {
	store       Store
	extractor   scanning.Extractor
	planner     planning.Planner
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(store Store, extractor scanning.Extractor, planner planning.Planner) *Service {
	return &Service{
		store:       store,
		extractor:   extractor,
		planner:     planner,
		idGenerator: &defaultIDGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(store Store, extractor scanning.Extractor, planner planning.Planner, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		store:       store,
		extractor:   extractor,
		planner:     planner,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// ScanReceipt runs a captured photo through extraction and persistence.
// On extractor failure the result carries the fallback text and no items,
// and the stored slots are left untouched; the previous scan stays current.
// A successful extraction replaces the raw slot wholesale, discards any
// overlay from the previous receipt, and, when the text parses to at least
// one item, prepends a finished Receipt to the history.
func (s *Service) ScanReceipt(filename string, data []byte, contentType string) (*ScanResult, error) {
	text, err := s.extractor.ExtractItems(data, contentType)
	if err != nil {
		slog.Error("Failed to extract receipt items",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		return &ScanResult{Text: NoResultText, Items: []Item{}}, nil
	}

	if err := s.store.SetRaw(text); err != nil {
		return nil, fmt.Errorf("saving scan result: %w", err)
	}
	if err := s.store.ClearOverlay(); err != nil {
		return nil, fmt.Errorf("clearing overlay: %w", err)
	}

	items := ParseItems(text)
	result := &ScanResult{Text: text, Items: items}
	if len(items) == 0 {
		return result, nil
	}

	receipt := Receipt{
		ID:    s.idGenerator.Generate(),
		Date:  s.timeSource.Now(),
		Items: items,
		Total: ItemsTotal(items),
	}
	if err := s.store.PrependToHistory(receipt); err != nil {
		// The scan itself succeeded; a history write failure only costs
		// the recent-activity entry.
		slog.Error("Failed to record receipt in history", "id", receipt.ID, "error", err)
	} else {
		result.Receipt = &receipt
	}

	return result, nil
}

// Ledger loads the current ledger state. Store failures degrade to an
// empty ledger rather than an error; the review screen shows "no receipt".
func (s *Service) Ledger() LedgerView {
	ledger := NewLedger(s.store)
	if err := ledger.Load(); err != nil {
		slog.Error("Failed to load ledger", "error", err)
		return LedgerView{Items: []Item{}}
	}
	return LedgerView{
		Items:    ledger.Items(),
		Modified: ledger.IsModified(),
		Total:    ledger.Total(),
	}
}

// UpdateItemName renames a ledger item and returns the updated view.
func (s *Service) UpdateItemName(index int, name string) (LedgerView, error) {
	return s.mutateLedger(func(l *Ledger) error {
		return l.UpdateName(index, name)
	})
}

// UpdateItemPrice replaces a ledger item's price string and returns the
// updated view.
func (s *Service) UpdateItemPrice(index int, price string) (LedgerView, error) {
	return s.mutateLedger(func(l *Ledger) error {
		return l.UpdatePrice(index, price)
	})
}

// AdjustItemQuantity changes a ledger item's quantity by delta (clamped to
// a minimum of 1) and returns the updated view.
func (s *Service) AdjustItemQuantity(index int, delta int) (LedgerView, error) {
	return s.mutateLedger(func(l *Ledger) error {
		return l.UpdateQuantity(index, delta)
	})
}

// DeleteItem removes a ledger item and returns the updated view.
func (s *Service) DeleteItem(index int) (LedgerView, error) {
	return s.mutateLedger(func(l *Ledger) error {
		return l.DeleteItem(index)
	})
}

// ResetLedger discards all edits and returns the view of the raw parse.
func (s *Service) ResetLedger() (LedgerView, error) {
	return s.mutateLedger(func(l *Ledger) error {
		return l.ResetToOriginal()
	})
}

func (s *Service) mutateLedger(mutate func(*Ledger) error) (LedgerView, error) {
	ledger := NewLedger(s.store)
	if err := ledger.Load(); err != nil {
		return LedgerView{}, fmt.Errorf("loading ledger: %w", err)
	}
	if err := mutate(ledger); err != nil {
		return LedgerView{}, err
	}
	return LedgerView{
		Items:    ledger.Items(),
		Modified: ledger.IsModified(),
		Total:    ledger.Total(),
	}, nil
}

// MealPlan generates a days-long meal plan. Items supplied by the caller
// take precedence over the stored ledger; with neither available it answers
// with an explanation instead of calling the provider. Provider failures
// come back as a fixed error message, never as an error.
func (s *Service) MealPlan(items []Item, days int) (string, error) {
	if !planning.ValidDays(days) {
		return "", fmt.Errorf("invalid day count: %d", days)
	}

	if items == nil {
		items = s.Ledger().Items
	}
	if len(items) == 0 {
		return PlanNoItemsText, nil
	}

	plan, err := s.planner.GeneratePlan(describeItems(items), days)
	if err != nil {
		slog.Error("Failed to generate meal plan", "days", days, "items", len(items), "error", err)
		return PlanErrorText, nil
	}
	return plan, nil
}

// describeItems renders the items as the comma-joined "name (Nx) - price"
// description embedded in the plan prompt.
func describeItems(items []Item) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s (%dx) - %s", item.Name, item.Quantity, item.Price))
	}
	return strings.Join(parts, ", ")
}

// History returns past receipts, newest first. Store failures degrade to
// an empty list.
func (s *Service) History() []Receipt {
	receipts, err := s.store.GetHistory()
	if err != nil {
		slog.Error("Failed to load history", "error", err)
		return []Receipt{}
	}
	return receipts
}

// RemoveReceipt deletes one receipt from the history.
func (s *Service) RemoveReceipt(id string) error {
	if err := s.store.RemoveFromHistory(id); err != nil {
		return fmt.Errorf("removing receipt: %w", err)
	}
	return nil
}
