package domain

import (
	"fmt"
	"strings"
)

// DeleteSelection decides which of an owner's payments a delete without an
// explicit payment id removes.
type DeleteSelection string

const (
	// SelectSecond keeps the legacy behaviour of removing the second payment
	// in store order. Owners with a single payment have nothing to select.
	SelectSecond DeleteSelection = "second"
	SelectFirst  DeleteSelection = "first"
	SelectLatest DeleteSelection = "latest"
)

func ParseDeleteSelection(s string) (DeleteSelection, error) {
	switch sel := DeleteSelection(strings.ToLower(strings.TrimSpace(s))); sel {
	case SelectSecond, SelectFirst, SelectLatest:
		return sel, nil
	case "":
		return SelectLatest, nil
	default:
		return "", fmt.Errorf("unknown delete selection policy %q", s)
	}
}

// Pick returns the selected payment, or false when the policy selects nothing.
func (s DeleteSelection) Pick(payments []*Payment) (*Payment, bool) {
	switch s {
	case SelectSecond:
		if len(payments) < 2 {
			return nil, false
		}
		return payments[1], true
	case SelectFirst:
		if len(payments) == 0 {
			return nil, false
		}
		return payments[0], true
	default:
		var latest *Payment
		for _, p := range payments {
			if latest == nil || p.ID > latest.ID {
				latest = p
			}
		}
		return latest, latest != nil
	}
}
