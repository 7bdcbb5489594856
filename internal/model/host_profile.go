package model

import (
	"errors"
	"strings"
	"time"
)

// Errors returned by variant payload validation. Handlers translate these
// into 400 responses with the message as the field-level error.
var (
	ErrWrongHostType   = errors.New("payload not allowed for this host type")
	ErrInvalidPayload  = errors.New("invalid payload")
	ErrInvalidInterval = errors.New("slot end must be after start")
)

// MenuItem is a caterer menu entry.
type MenuItem struct {
	Name          string  `json:"name"`
	PricePerPlate float64 `json:"pricePerPlate"`
	Category      string  `json:"category,omitempty"` // e.g. veg, non-veg, dessert
}

// DecorationCategory is a decorator's themed package.
type DecorationCategory struct {
	Name  string  `json:"name"`
	Theme string  `json:"theme,omitempty"`
	Price float64 `json:"price"`
}

// OrganizerService is a package offered by an event organizer.
type OrganizerService struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
}

// AvailabilitySlot marks a window in which the host accepts bookings.
type AvailabilitySlot struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ValidateMenuItem checks a menu entry against the owning host's subtype.
// Only caterers carry a menu.
func ValidateMenuItem(t HostType, m MenuItem) error {
	if t != HostCaterer {
		return ErrWrongHostType
	}
	if strings.TrimSpace(m.Name) == "" || m.PricePerPlate < 0 {
		return ErrInvalidPayload
	}
	return nil
}

// ValidateDecorationCategory checks a decoration package; decorators only.
func ValidateDecorationCategory(t HostType, d DecorationCategory) error {
	if t != HostDecorator {
		return ErrWrongHostType
	}
	if strings.TrimSpace(d.Name) == "" || d.Price < 0 {
		return ErrInvalidPayload
	}
	return nil
}

// ValidateOrganizerService checks an organizer package; organizers only.
func ValidateOrganizerService(t HostType, s OrganizerService) error {
	if t != HostOrganizer {
		return ErrWrongHostType
	}
	if strings.TrimSpace(s.Name) == "" || s.Price < 0 {
		return ErrInvalidPayload
	}
	return nil
}

// ValidateAvailability checks that every slot is a well-formed interval.
// All host subtypes maintain an availability calendar.
func ValidateAvailability(slots []AvailabilitySlot) error {
	for _, s := range slots {
		if s.From.IsZero() || s.To.IsZero() {
			return ErrInvalidPayload
		}
		if !s.To.After(s.From) {
			return ErrInvalidInterval
		}
	}
	return nil
}
