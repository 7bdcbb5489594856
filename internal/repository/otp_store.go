package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPStore keeps pending verification codes in Redis so they survive across
// worker processes and expire on their own, instead of living in an
// unbounded in-process map. One hash per (kind, email) holds a code and a
// verified flag per channel.
type OTPStore struct {
	RDB *redis.Client
	TTL time.Duration
}

// NewOTPStore returns a store with the default 10 minute code lifetime.
// A nil client is tolerated; operations then fail with ErrStoreUnavailable.
func NewOTPStore(rdb *redis.Client) *OTPStore {
	return &OTPStore{RDB: rdb, TTL: 10 * time.Minute}
}

func otpKey(kind, email string) string {
	return fmt.Sprintf("otp:%s:%s", strings.ToLower(kind), strings.ToLower(strings.TrimSpace(email)))
}

// CreatePending stores fresh codes for both channels, replacing any previous
// pending verification and restarting the TTL.
func (s *OTPStore) CreatePending(ctx context.Context, kind, email, emailCode, mobileCode string) error {
	if s.RDB == nil {
		return ErrStoreUnavailable
	}
	key := otpKey(kind, email)
	pipe := s.RDB.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key,
		"email_code", emailCode,
		"mobile_code", mobileCode,
		"email_verified", 0,
		"mobile_verified", 0)
	pipe.Expire(ctx, key, s.TTL)
	_, err := pipe.Exec(ctx)
	return err
}

// verifyScript checks the submitted code for one channel and flips its
// verified flag atomically, so two concurrent verifications cannot read
// stale state. Returns: -1 missing key, 0 mismatch, 1 channel verified,
// 2 both channels verified (key deleted).
var verifyScript = redis.NewScript(`
	local key = KEYS[1]
	local channel = ARGV[1]
	local code = ARGV[2]

	if redis.call('EXISTS', key) == 0 then
		return -1
	end
	local want = redis.call('HGET', key, channel .. '_code')
	if want == false or want ~= code then
		return 0
	end
	redis.call('HSET', key, channel .. '_verified', 1)
	local e = redis.call('HGET', key, 'email_verified')
	local m = redis.call('HGET', key, 'mobile_verified')
	if e == '1' and m == '1' then
		redis.call('DEL', key)
		return 2
	end
	return 1
`)

// VerifyChannel consumes a code for the email or mobile channel. It reports
// whether both channels are now verified, in which case the pending record
// has been released.
func (s *OTPStore) VerifyChannel(ctx context.Context, kind, email, channel, code string) (bothVerified bool, err error) {
	if s.RDB == nil {
		return false, ErrStoreUnavailable
	}
	res, err := verifyScript.Run(ctx, s.RDB, []string{otpKey(kind, email)}, channel, code).Int()
	if err != nil {
		return false, err
	}
	switch res {
	case -1:
		return false, ErrOTPExpired
	case 0:
		return false, ErrOTPMismatch
	case 2:
		return true, nil
	}
	return false, nil
}
