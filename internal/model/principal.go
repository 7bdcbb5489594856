package model

import "time"

// PrincipalKind tags the two independent identity collections plus the
// administrator role granted to configured user accounts. The kind is
// embedded in the access token so downstream authorization can distinguish
// users from hosts without a second lookup.
type PrincipalKind string

const (
	KindUser  PrincipalKind = "USER"
	KindHost  PrincipalKind = "HOST"
	KindAdmin PrincipalKind = "ADMIN"
)

// HostType identifies the subtype of a host record.
type HostType string

const (
	HostVenue     HostType = "venue"
	HostCaterer   HostType = "caterer"
	HostDecorator HostType = "decorator"
	HostOrganizer HostType = "organizer"
)

// ValidHostType reports whether t is a known host subtype.
func ValidHostType(t HostType) bool {
	switch t {
	case HostVenue, HostCaterer, HostDecorator, HostOrganizer:
		return true
	}
	return false
}

// ServiceType is the service classification carried on a booking's service
// entries. Each service type maps to exactly one provider host subtype.
type ServiceType string

const (
	ServiceCatering     ServiceType = "catering"
	ServiceDecoration   ServiceType = "decoration"
	ServiceOrganization ServiceType = "organization"
)

// HostTypeForService returns the host subtype allowed to fulfil the given
// service type, and false when the service type is unknown.
func HostTypeForService(s ServiceType) (HostType, bool) {
	switch s {
	case ServiceCatering:
		return HostCaterer, true
	case ServiceDecoration:
		return HostDecorator, true
	case ServiceOrganization:
		return HostOrganizer, true
	}
	return "", false
}

// User mirrors the `users` table. Email and phone are unique within the
// user collection; a host may reuse the same email independently.
type User struct {
	ID             uint64    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	PasswordHash   string    `json:"-"`
	EmailVerified  bool      `json:"emailVerified"`
	MobileVerified bool      `json:"mobileVerified"`
	IsVerified     bool      `json:"isVerified"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Host mirrors the `hosts` table. Subtype-specific payloads (menu items,
// decoration categories, organizer services) live in JSON columns and are
// only populated for the matching HostType.
type Host struct {
	ID              uint64   `json:"id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	PasswordHash    string   `json:"-"`
	HostType        HostType `json:"hostType"`
	City            string   `json:"city"`
	Address         string   `json:"address"`
	Capacity        uint32   `json:"capacity,omitempty"` // venues only
	ServicesOffered []string `json:"servicesOffered,omitempty"`
	BasePrice       float64  `json:"basePrice"`
	Rating          float64  `json:"rating"`

	Menu              []MenuItem           `json:"menu,omitempty"`
	DecorCategories   []DecorationCategory `json:"decorationCategories,omitempty"`
	OrganizerServices []OrganizerService   `json:"organizerServices,omitempty"`
	Availability      []AvailabilitySlot   `json:"availability,omitempty"`
	Reviews           []Review             `json:"reviews,omitempty"`
	Payout            BankDetails          `json:"payout,omitempty"`

	Images    []string `json:"images,omitempty"`
	Videos    []string `json:"videos,omitempty"`
	Documents []string `json:"documents,omitempty"`

	EmailVerified  bool      `json:"emailVerified"`
	MobileVerified bool      `json:"mobileVerified"`
	IsVerified     bool      `json:"isVerified"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// BankDetails holds the payout coordinates for a host.
type BankDetails struct {
	AccountName   string `json:"accountName,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	IFSC          string `json:"ifsc,omitempty"`
	UPI           string `json:"upi,omitempty"`
}

// Review is a manually recorded rating entry. Rating on the host is a
// settable field; no automatic aggregation is derived from reviews.
type Review struct {
	Author  string    `json:"author"`
	Rating  float64   `json:"rating"`
	Comment string    `json:"comment,omitempty"`
	Date    time.Time `json:"date"`
}
