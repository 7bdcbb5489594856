package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/eventra/eventra-backend/internal/model"
	"github.com/eventra/eventra-backend/internal/utils"
)

// HostRepo persists host principals of all subtypes. Subtype payloads,
// availability, reviews, payout details and media paths are JSON columns
// marshalled here so the rest of the code works with typed slices.
type HostRepo struct{ DB *sql.DB }

func NewHostRepo(db *sql.DB) *HostRepo { return &HostRepo{DB: db} }

const hostCols = `id,name,email,phone,password_hash,host_type,city,address,capacity,
	services_offered,base_price,rating,menu,decor_categories,organizer_services,
	availability,reviews,payout,images,videos,documents,
	email_verified,mobile_verified,is_verified,is_active,created_at,updated_at`

type scannable interface{ Scan(dest ...any) error }

func scanHost(row scannable) (model.Host, error) {
	var h model.Host
	var servicesOffered, menu, decor, organizer, availability, reviews, payout,
		images, videos, documents sql.NullString
	err := row.Scan(&h.ID, &h.Name, &h.Email, &h.Phone, &h.PasswordHash, &h.HostType,
		&h.City, &h.Address, &h.Capacity,
		&servicesOffered, &h.BasePrice, &h.Rating, &menu, &decor, &organizer,
		&availability, &reviews, &payout, &images, &videos, &documents,
		&h.EmailVerified, &h.MobileVerified, &h.IsVerified, &h.IsActive,
		&h.CreatedAt, &h.UpdatedAt)
	if err == sql.ErrNoRows {
		return h, ErrNotFound
	}
	if err != nil {
		return h, err
	}
	fromJSON(servicesOffered, &h.ServicesOffered)
	fromJSON(menu, &h.Menu)
	fromJSON(decor, &h.DecorCategories)
	fromJSON(organizer, &h.OrganizerServices)
	fromJSON(availability, &h.Availability)
	fromJSON(reviews, &h.Reviews)
	fromJSON(payout, &h.Payout)
	fromJSON(images, &h.Images)
	fromJSON(videos, &h.Videos)
	fromJSON(documents, &h.Documents)
	return h, nil
}

// fromJSON decodes a nullable JSON column into dst, ignoring NULLs and
// malformed values (a bad row should not poison a whole listing).
func fromJSON(s sql.NullString, dst any) {
	if !s.Valid || s.String == "" {
		return
	}
	_ = json.Unmarshal([]byte(s.String), dst)
}

func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// Create inserts a host and returns its id. Duplicate email or phone within
// the host collection maps to ErrConflict.
func (r *HostRepo) Create(ctx context.Context, name, email, phone, password string, t model.HostType, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO hosts (name, email, phone, password_hash, host_type) VALUES (?,?,?,?,?)",
		name, email, phone, hash, string(t))
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a host by normalized email.
func (r *HostRepo) GetByEmail(ctx context.Context, email string) (model.Host, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanHost(r.DB.QueryRowContext(ctx,
		"SELECT "+hostCols+" FROM hosts WHERE email=? LIMIT 1", email))
}

// GetByID fetches a host by id.
func (r *HostRepo) GetByID(ctx context.Context, id uint64) (model.Host, error) {
	return scanHost(r.DB.QueryRowContext(ctx,
		"SELECT "+hostCols+" FROM hosts WHERE id=? LIMIT 1", id))
}

// GetVerified fetches a host only when it is active, verified and of the
// expected subtype; anything else maps to ErrNotFound. Booking creation
// resolves its references through this method.
func (r *HostRepo) GetVerified(ctx context.Context, id uint64, t model.HostType) (model.Host, error) {
	h, err := r.GetByID(ctx, id)
	if err != nil {
		return h, err
	}
	if h.HostType != t || !h.IsVerified || !h.IsActive {
		return model.Host{}, ErrNotFound
	}
	return h, nil
}

// SetChannelVerified marks the email or mobile channel verified and derives
// the aggregate is_verified flag.
func (r *HostRepo) SetChannelVerified(ctx context.Context, email, channel string) error {
	col := "email_verified"
	if channel == "mobile" {
		col = "mobile_verified"
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE hosts SET "+col+"=1, is_verified=(email_verified AND mobile_verified) WHERE email=?",
		strings.ToLower(strings.TrimSpace(email)))
	return err
}

// HostListQuery defines filters and pagination for the listing directory.
type HostListQuery struct {
	Types        []model.HostType // subtype scope (venue, or the provider set)
	ExactType    model.HostType   // optional exact subtype filter within scope
	City         string           // substring match on city
	ServiceTypes []string         // any-of match against services_offered
	MinCapacity  uint32           // venues only
	Page         int
	Limit        int
}

// buildHostListWhere renders the WHERE clause and its arguments for a
// listing query. Split out from List so the SQL construction is testable
// without a database.
func buildHostListWhere(q HostListQuery) (string, []any) {
	where := []string{"is_active=1", "is_verified=1"}
	args := []any{}

	if q.ExactType != "" {
		where = append(where, "host_type=?")
		args = append(args, string(q.ExactType))
	} else if len(q.Types) > 0 {
		ph := make([]string, len(q.Types))
		for i, t := range q.Types {
			ph[i] = "?"
			args = append(args, string(t))
		}
		where = append(where, "host_type IN ("+strings.Join(ph, ",")+")")
	}
	if q.City != "" {
		where = append(where, "LOWER(city) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.City)+"%")
	}
	for _, s := range q.ServiceTypes {
		where = append(where, "JSON_CONTAINS(services_offered, JSON_QUOTE(?))")
		args = append(args, strings.ToLower(strings.TrimSpace(s)))
	}
	if q.MinCapacity > 0 {
		where = append(where, "capacity >= ?")
		args = append(args, q.MinCapacity)
	}
	return strings.Join(where, " AND "), args
}

// List returns one page of matching hosts plus the total match count.
func (r *HostRepo) List(ctx context.Context, q HostListQuery) ([]model.Host, int64, error) {
	cond, args := buildHostListWhere(q)

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM hosts WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.Limit
	offset := (q.Page - 1) * q.Limit
	dataSQL := "SELECT " + hostCols + " FROM hosts WHERE " + cond +
		" ORDER BY rating DESC, id ASC LIMIT ? OFFSET ?"
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.DB.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Host, 0, limit)
	for rows.Next() {
		h, err := scanHost(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, h)
	}
	return out, total, rows.Err()
}

// HostProfileUpdate carries the mutable profile fields of a host. Nil
// pointers leave the column untouched.
type HostProfileUpdate struct {
	Name            *string
	City            *string
	Address         *string
	Capacity        *uint32
	BasePrice       *float64
	Rating          *float64
	ServicesOffered []string
	Payout          *model.BankDetails
}

// UpdateProfile applies a partial profile update to the host the caller owns.
func (r *HostRepo) UpdateProfile(ctx context.Context, id uint64, u HostProfileUpdate) error {
	set := []string{}
	args := []any{}
	add := func(col string, v any) { set = append(set, col+"=?"); args = append(args, v) }

	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.City != nil {
		add("city", *u.City)
	}
	if u.Address != nil {
		add("address", *u.Address)
	}
	if u.Capacity != nil {
		add("capacity", *u.Capacity)
	}
	if u.BasePrice != nil {
		add("base_price", *u.BasePrice)
	}
	if u.Rating != nil {
		add("rating", *u.Rating)
	}
	if u.ServicesOffered != nil {
		add("services_offered", toJSON(u.ServicesOffered))
	}
	if u.Payout != nil {
		add("payout", toJSON(*u.Payout))
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE hosts SET "+strings.Join(set, ", ")+" WHERE id=?", args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// AppendMenuItem adds a caterer menu entry.
func (r *HostRepo) AppendMenuItem(ctx context.Context, h model.Host, m model.MenuItem) error {
	return r.setJSONColumn(ctx, h.ID, "menu", append(h.Menu, m))
}

// AppendDecorCategory adds a decorator package.
func (r *HostRepo) AppendDecorCategory(ctx context.Context, h model.Host, d model.DecorationCategory) error {
	return r.setJSONColumn(ctx, h.ID, "decor_categories", append(h.DecorCategories, d))
}

// AppendOrganizerService adds an organizer package.
func (r *HostRepo) AppendOrganizerService(ctx context.Context, h model.Host, s model.OrganizerService) error {
	return r.setJSONColumn(ctx, h.ID, "organizer_services", append(h.OrganizerServices, s))
}

// ReplaceAvailability overwrites the availability calendar.
func (r *HostRepo) ReplaceAvailability(ctx context.Context, id uint64, slots []model.AvailabilitySlot) error {
	return r.setJSONColumn(ctx, id, "availability", slots)
}

// AddMediaPaths appends stored upload paths to one of the media columns.
// category must be images, videos or documents (validated by the caller).
func (r *HostRepo) AddMediaPaths(ctx context.Context, h model.Host, category string, paths []string) error {
	var cur []string
	switch category {
	case "images":
		cur = h.Images
	case "videos":
		cur = h.Videos
	case "documents":
		cur = h.Documents
	}
	return r.setJSONColumn(ctx, h.ID, category, append(cur, paths...))
}

// Deactivate removes the host from the listing directory without deleting
// the record, so existing bookings keep a resolvable reference.
func (r *HostRepo) Deactivate(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE hosts SET is_active=0 WHERE id=?", id)
	return err
}

func (r *HostRepo) setJSONColumn(ctx context.Context, id uint64, col string, v any) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE hosts SET "+col+"=? WHERE id=?", toJSON(v), id)
	return err
}
