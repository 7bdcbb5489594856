package handler

import (
	"context"
	"time"

	"github.com/eventra/eventra-backend/internal/model"
	"github.com/eventra/eventra-backend/internal/repository"
)

// Persistence seams the handlers depend on. The repository types implement
// them; tests substitute fakes.

// BookingStore is the booking persistence surface shared by the booking and
// payment handlers.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (model.Booking, error)
	ListForUser(ctx context.Context, userID uint64) ([]model.Booking, error)
	ListForHost(ctx context.Context, hostID uint64) ([]model.Booking, error)
	UpdateStatusCAS(ctx context.Context, id uint64, from, to model.Status) (bool, error)
	MarkPaidCAS(ctx context.Context, id uint64, txnID, method string, when time.Time) error
	SetNotificationFlags(ctx context.Context, id uint64, f model.NotificationFlags) error
	Delete(ctx context.Context, id uint64) error
}

// UserStore is the user principal surface.
type UserStore interface {
	Create(ctx context.Context, name, email, phone, password string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	SetChannelVerified(ctx context.Context, email, channel string) error
}

// HostStore is the host principal surface, covering the directory queries
// and the profile/variant-payload mutations.
type HostStore interface {
	Create(ctx context.Context, name, email, phone, password string, t model.HostType, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.Host, error)
	GetByID(ctx context.Context, id uint64) (model.Host, error)
	GetVerified(ctx context.Context, id uint64, t model.HostType) (model.Host, error)
	SetChannelVerified(ctx context.Context, email, channel string) error
	List(ctx context.Context, q repository.HostListQuery) ([]model.Host, int64, error)
	UpdateProfile(ctx context.Context, id uint64, u repository.HostProfileUpdate) error
	AppendMenuItem(ctx context.Context, h model.Host, m model.MenuItem) error
	AppendDecorCategory(ctx context.Context, h model.Host, d model.DecorationCategory) error
	AppendOrganizerService(ctx context.Context, h model.Host, s model.OrganizerService) error
	ReplaceAvailability(ctx context.Context, id uint64, slots []model.AvailabilitySlot) error
	AddMediaPaths(ctx context.Context, h model.Host, category string, paths []string) error
	Deactivate(ctx context.Context, id uint64) error
}

var (
	_ BookingStore = (*repository.BookingRepo)(nil)
	_ UserStore    = (*repository.UserRepo)(nil)
	_ HostStore    = (*repository.HostRepo)(nil)
)
