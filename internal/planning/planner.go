// Package planning generates multi-day meal plans from the items on a
// scanned receipt, using the same generative-AI providers that handle
// extraction.
package planning

import (
	"errors"
	"fmt"
)

// ErrBadResponseShape is returned when the provider answered but the
// response did not contain the expected text content.
var ErrBadResponseShape = errors.New("response missing text content")

// DayOptions are the plan lengths a user can choose from.
var DayOptions = []int{3, 5, 7, 10, 14}

// ValidDays reports whether days is one of the selectable plan lengths.
func ValidDays(days int) bool {
	for _, d := range DayOptions {
		if d == days {
			return true
		}
	}
	return false
}

// Planner defines the interface for meal plan generation.
type Planner interface {
	// GeneratePlan asks the provider for a days-long meal plan built from
	// the given item description and returns the free-text plan.
	GeneratePlan(items string, days int) (string, error)
	// Close closes the planner and releases resources
	Close() error
}

// planPrompt builds the fixed request template around the item description
// and day count.
func planPrompt(items string, days int) string {
	return fmt.Sprintf(`Based on these food items from my receipt: %s, create a %d-day meal plan.
Include breakfast, lunch, and dinner for each day.
Include the cost for each day, average cost per meal, and total cost for the week.
Make sure to use the ingredients I have and prioritize for affordability.
Format the response as a clear, organized list with days and meals.
Do not include any additional text or comments.`, items, days)
}
