package wisher

import (
	"context"
	"fmt"

	"wishsender/internal/model"
)

// Wisher produces the body of a birthday message for a contact.
type Wisher interface {
	Render(ctx context.Context, contact model.Contact) (string, error)
}

// FallbackMessage is the deterministic template used whenever rendering fails
// or no generator is configured. A wish must never be lost to a broken
// personalization service.
func FallbackMessage(contact model.Contact) string {
	return fmt.Sprintf(
		"Happy Birthday, %s! Wishing you a wonderful day and a fantastic year ahead.",
		contact.Name,
	)
}

// Static always renders the fallback template.
type Static struct{}

func (Static) Render(_ context.Context, contact model.Contact) (string, error) {
	return FallbackMessage(contact), nil
}
