package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/shandysiswandi/memberauth/internal/member/entity"
	"github.com/shandysiswandi/memberauth/internal/member/outbound/cache"
	"github.com/shandysiswandi/memberauth/internal/pkg/clock"
	"github.com/shandysiswandi/memberauth/internal/pkg/config"
	"github.com/shandysiswandi/memberauth/internal/pkg/goerror"
	"github.com/shandysiswandi/memberauth/internal/pkg/goroutine"
	"github.com/shandysiswandi/memberauth/internal/pkg/hash"
	"github.com/shandysiswandi/memberauth/internal/pkg/instrument"
	"github.com/shandysiswandi/memberauth/internal/pkg/jwt"
	"github.com/shandysiswandi/memberauth/internal/pkg/kvstore"
	"github.com/shandysiswandi/memberauth/internal/pkg/validator"
)

const (
	testPhone = "6281234567890"
	testYAML  = `
modules:
  member:
    otp_ttl_seconds: 600
    max_attempts: 3
    max_payment_gap_years: 4
`
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) RequestChallenge(ctx context.Context, phone, code string) (*entity.Subject, error) {
	args := m.Called(ctx, phone, code)
	subject, _ := args.Get(0).(*entity.Subject)
	return subject, args.Error(1)
}

func (m *mockVerifier) LookupMember(ctx context.Context, membershipNumber string) (json.RawMessage, error) {
	args := m.Called(ctx, membershipNumber)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

type recordingMessaging struct {
	mu       sync.Mutex
	err      error
	issued   []OTPIssuedEvent
	verified []OTPVerifiedEvent
}

func (r *recordingMessaging) PublishOTPIssued(_ context.Context, msg OTPIssuedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.issued = append(r.issued, msg)
	return nil
}

func (r *recordingMessaging) PublishOTPVerified(_ context.Context, msg OTPVerifiedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.verified = append(r.verified, msg)
	return nil
}

// meteredInstrument records metrics in memory and traces nothing.
type meteredInstrument struct {
	instrument.Instrumentation
	provider *sdkmetric.MeterProvider
}

func (m meteredInstrument) Meter(name string) metric.Meter {
	return m.provider.Meter(name)
}

// sequenceCodes hands out codes in order so tests know what was sent.
type sequenceCodes struct {
	mu    sync.Mutex
	codes []string
	next  int
}

func (s *sequenceCodes) Generate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.codes) {
		return "", errors.New("no more codes")
	}
	code := s.codes[s.next]
	s.next++
	return code, nil
}

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type fixture struct {
	uc       *Usecase
	store    *kvstore.Memory
	clk      *clock.FixedClocker
	verifier *mockVerifier
	mq       *recordingMessaging
	jwt      *jwt.Symmetric
	gm       *goroutine.Manager
	reader   *sdkmetric.ManualReader
}

func newFixture(t *testing.T, codes ...string) *fixture {
	t.Helper()

	clk := clock.NewFixed(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	store := kvstore.NewMemory(kvstore.WithClock(clk), kvstore.WithJanitor(0))
	t.Cleanup(func() { _ = store.Close() })

	cfg, err := config.NewViperFromBytes("yaml", []byte(testYAML))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	hmac, err := hash.NewHMACSHA256("otp-secret")
	require.NoError(t, err)

	signer, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("s", 64)),
		Issuer:    "memberauth",
		Audiences: []string{"iai-member"},
		TTL:       7 * 24 * time.Hour,
		Clock:     clk,
		UUID:      fixedID("jti"),
	})
	require.NoError(t, err)

	reader := sdkmetric.NewManualReader()
	ins := meteredInstrument{
		Instrumentation: instrument.NewNoop(),
		provider:        sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}
	f := &fixture{
		store:    store,
		clk:      clk,
		verifier: new(mockVerifier),
		mq:       new(recordingMessaging),
		jwt:      signer,
		gm:       goroutine.NewManager(10),
		reader:   reader,
	}
	f.uc = New(Dependency{
		RepoCache:     cache.NewCache(store, ins),
		RepoVerifier:  f.verifier,
		RepoMessaging: f.mq,
		Validator:     v,
		Config:        cfg,
		HMAC:          hmac,
		OTP:           &sequenceCodes{codes: codes},
		Clock:         clk,
		JWT:           signer,
		Instrument:    ins,
		Goroutine:     f.gm,
	})

	return f
}

// drain waits for background event publishing.
func (f *fixture) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, f.gm.Wait(ctx))
}

// counter sums the data points of an Int64 counter whose attributes match attrs exactly.
func (f *fixture) counter(t *testing.T, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, f.reader.Collect(context.Background(), &rm))

	want := attribute.NewSet(attrs...)
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				if dp.Attributes.Equals(&want) {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func (f *fixture) expectMember(lastPaymentAt, license string) {
	f.verifier.On("RequestChallenge", mock.Anything, testPhone, mock.Anything).Return(&entity.Subject{
		Name:             "Ar. Tester Iai Interaktif, IAI",
		MembershipNumber: "99998",
		LicenseNumber:    license,
		PhoneNumber:      testPhone,
		LastPaymentAt:    lastPaymentAt,
		LastPayment:      "2026",
	}, nil)
}

func requireGoError(t *testing.T, err error, code goerror.Code) *goerror.Error {
	t.Helper()

	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr), "expected *goerror.Error, got %v", err)
	require.Equal(t, code, gerr.Code(), gerr.String())
	return gerr
}
