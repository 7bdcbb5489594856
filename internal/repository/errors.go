// Package repository implements data access over MySQL plus the Redis-backed
// OTP store. Sentinel errors defined here let handlers translate failures
// into the HTTP taxonomy without inspecting driver errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a referenced entity does not exist or does
// not satisfy a role/verification requirement. Handlers translate this into
// an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a unique identity field (email or phone)
// already exists within the same principal collection. Handlers translate
// this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrAlreadyPaid is returned when a payment mark loses the conditional
// update, i.e. the booking was already paid.
var ErrAlreadyPaid = errors.New("booking already paid")

// ErrOTPMismatch is returned when a verification code does not match the
// pending one for the channel.
var ErrOTPMismatch = errors.New("otp mismatch")

// ErrOTPExpired is returned when no pending verification exists, either
// because it was never requested or its TTL elapsed.
var ErrOTPExpired = errors.New("otp expired or not requested")

// ErrStoreUnavailable is returned when the OTP store has no Redis
// connection. Handlers degrade to HTTP 500.
var ErrStoreUnavailable = errors.New("verification store unavailable")

// isDuplicateKey reports whether err is MySQL error 1062 (duplicate entry
// on a unique index). The string fallback covers drivers or proxies that do
// not surface the typed error.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return err != nil && strings.Contains(err.Error(), "1062")
}
