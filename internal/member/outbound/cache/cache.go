// Package cache keeps pending one-time codes, attempt counters and subject
// snapshots in the key-value store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/memberauth/internal/member/entity"
	"github.com/shandysiswandi/memberauth/internal/pkg/goerror"
	"github.com/shandysiswandi/memberauth/internal/pkg/instrument"
	"github.com/shandysiswandi/memberauth/internal/pkg/kvstore"
)

const (
	prefixOTP      = "otp:"
	prefixAttempts = "otp_attempts:"
	prefixMember   = "otp_member:"
)

func keyOTP(phone string) string      { return prefixOTP + phone }
func keyAttempts(phone string) string { return prefixAttempts + phone }
func keyMember(phone string) string   { return prefixMember + phone }

type Cache struct {
	store kvstore.Store
	ins   instrument.Instrumentation
}

func NewCache(store kvstore.Store, ins instrument.Instrumentation) *Cache {
	return &Cache{store: store, ins: ins}
}

func (c *Cache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("member.outbound.cache").Start(ctx, name)
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// SaveChallenge stores the code digest and subject snapshot for ttl and
// resets the attempt counter, all in one atomic write.
func (c *Cache) SaveChallenge(ctx context.Context, ch entity.Challenge, ttl time.Duration) error {
	ctx, span := c.startSpan(ctx, "SaveChallenge")
	defer span.End()

	subject, err := json.Marshal(ch.Subject)
	if err != nil {
		return fail(span, err)
	}

	if err := c.store.Write(ctx, kvstore.Batch{
		Sets: []kvstore.Entry{
			{Key: keyOTP(ch.PhoneNumber), Value: ch.CodeDigest, TTL: ttl},
			{Key: keyMember(ch.PhoneNumber), Value: string(subject), TTL: ttl},
		},
		Deletes: []string{keyAttempts(ch.PhoneNumber)},
	}); err != nil {
		return fail(span, err)
	}

	return nil
}

// IncrAttempts counts one verification attempt. The counter's window starts
// at the first attempt and is not extended by later ones.
func (c *Cache) IncrAttempts(ctx context.Context, phone string, window time.Duration) (int64, error) {
	ctx, span := c.startSpan(ctx, "IncrAttempts")
	defer span.End()

	key := keyAttempts(phone)
	n, err := c.store.Incr(ctx, key)
	if err != nil {
		return 0, fail(span, err)
	}

	if n == 1 {
		if err := c.store.Expire(ctx, key, window); err != nil {
			// a counter without a TTL would lock the number out for good
			if errDel := c.store.Delete(ctx, key); errDel != nil {
				slog.ErrorContext(ctx, "failed to drop attempt counter without ttl", "error", errDel)
			}
			return 0, fail(span, err)
		}
	}

	return n, nil
}

// GetOTPDigest returns the pending code digest or goerror.ErrNotFound.
func (c *Cache) GetOTPDigest(ctx context.Context, phone string) (string, error) {
	ctx, span := c.startSpan(ctx, "GetOTPDigest")
	defer span.End()

	v, err := c.store.Get(ctx, keyOTP(phone))
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", goerror.ErrNotFound
	}
	if err != nil {
		return "", fail(span, err)
	}
	return v, nil
}

// GetSubject returns the subject snapshot or goerror.ErrNotFound.
func (c *Cache) GetSubject(ctx context.Context, phone string) (*entity.CachedSubject, error) {
	ctx, span := c.startSpan(ctx, "GetSubject")
	defer span.End()

	v, err := c.store.Get(ctx, keyMember(phone))
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, fail(span, err)
	}

	var subject entity.CachedSubject
	if err := json.Unmarshal([]byte(v), &subject); err != nil {
		return nil, fail(span, err)
	}
	return &subject, nil
}

// HasPendingOTP reports whether an unexpired code exists for phone.
func (c *Cache) HasPendingOTP(ctx context.Context, phone string) (bool, error) {
	ctx, span := c.startSpan(ctx, "HasPendingOTP")
	defer span.End()

	ok, err := c.store.Exists(ctx, keyOTP(phone))
	if err != nil {
		return false, fail(span, err)
	}
	return ok, nil
}

// DeleteOTP removes the pending code. The attempt counter is left to expire.
func (c *Cache) DeleteOTP(ctx context.Context, phone string) error {
	ctx, span := c.startSpan(ctx, "DeleteOTP")
	defer span.End()

	if err := c.store.Delete(ctx, keyOTP(phone)); err != nil {
		return fail(span, err)
	}
	return nil
}

// ClearChallenge removes the pending code and its attempt counter.
func (c *Cache) ClearChallenge(ctx context.Context, phone string) error {
	ctx, span := c.startSpan(ctx, "ClearChallenge")
	defer span.End()

	if err := c.store.Delete(ctx, keyOTP(phone), keyAttempts(phone)); err != nil {
		return fail(span, err)
	}
	return nil
}

// Ping checks the backing store.
func (c *Cache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}
