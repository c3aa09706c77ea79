package inbound

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/memberauth/internal/member/entity"
	"github.com/shandysiswandi/memberauth/internal/member/outbound/cache"
	"github.com/shandysiswandi/memberauth/internal/member/outbound/mq"
	"github.com/shandysiswandi/memberauth/internal/member/outbound/verifier"
	"github.com/shandysiswandi/memberauth/internal/member/usecase"
	"github.com/shandysiswandi/memberauth/internal/pkg/clock"
	"github.com/shandysiswandi/memberauth/internal/pkg/config"
	"github.com/shandysiswandi/memberauth/internal/pkg/goroutine"
	"github.com/shandysiswandi/memberauth/internal/pkg/hash"
	"github.com/shandysiswandi/memberauth/internal/pkg/instrument"
	"github.com/shandysiswandi/memberauth/internal/pkg/jwt"
	"github.com/shandysiswandi/memberauth/internal/pkg/kvstore"
	"github.com/shandysiswandi/memberauth/internal/pkg/messaging"
	"github.com/shandysiswandi/memberauth/internal/pkg/router"
	"github.com/shandysiswandi/memberauth/internal/pkg/uid"
	"github.com/shandysiswandi/memberauth/internal/pkg/validator"
)

const (
	testPhone = "6281234567890"
	testCode  = "482913"
	trustedIP = "10.0.0.8"
	testYAML  = `
app:
  server:
    ip_allowlist: "10.0.0.8"
modules:
  member:
    otp_ttl_seconds: 600
    max_attempts: 3
    max_payment_gap_years: 4
`
)

type successEnvelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type errorEnvelope struct {
	Message string            `json:"message"`
	Error   map[string]string `json:"error"`
}

type fixedCode string

func (f fixedCode) Generate() (string, error) { return string(f), nil }

func newTestServer(t *testing.T, rps float64, subject entity.Subject) http.Handler {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testYAML))
	require.NoError(t, err)

	clk := clock.NewFixed(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	store := kvstore.NewMemory(kvstore.WithClock(clk), kvstore.WithJanitor(0))
	t.Cleanup(func() { _ = store.Close() })

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	hmac, err := hash.NewHMACSHA256("otp-secret")
	require.NoError(t, err)

	// the token clock is real so the router can verify what it issued
	signer, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("s", 64)),
		Issuer:    "memberauth",
		Audiences: []string{"iai-member"},
		TTL:       7 * 24 * time.Hour,
		Clock:     clock.New(),
		UUID:      uid.NewUUID(),
	})
	require.NoError(t, err)

	ins := instrument.NewNoop()
	gm := goroutine.NewManager(10)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = gm.Wait(ctx)
	})

	uc := usecase.New(usecase.Dependency{
		RepoCache:     cache.NewCache(store, ins),
		RepoVerifier:  verifier.NewMock(subject, ins),
		RepoMessaging: mq.NewMessaging(messaging.NewNoop(), ins),
		Validator:     v,
		Config:        cfg,
		HMAC:          hmac,
		OTP:           fixedCode(testCode),
		Clock:         clk,
		JWT:           signer,
		Instrument:    ins,
		Goroutine:     gm,
	})

	r := router.NewRouter(router.Config{Config: cfg, UUID: uid.NewUUID(), JWT: signer, Instrument: ins})
	limiter := router.NewRateLimiter(rps, 2)
	t.Cleanup(func() { _ = limiter.Close() })

	RegisterHTTPEndpoint(r, uc, limiter)
	return r
}

func fromPeer(ip string) func(*http.Request) {
	return func(r *http.Request) { r.RemoteAddr = ip + ":40000" }
}

func withHeader(key, value string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

func doJSON(t *testing.T, h http.Handler, method, path string, payload any, token string, opts ...func(*http.Request)) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		buf := &bytes.Buffer{}
		require.NoError(t, json.NewEncoder(buf).Encode(payload))
		body = buf
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, opt := range opts {
		opt(req)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec.Code, rec.Body.Bytes()
}

func decodeSuccess(t *testing.T, body []byte, out any) successEnvelope {
	t.Helper()

	var env successEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	if out != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env
}

func decodeError(t *testing.T, body []byte) errorEnvelope {
	t.Helper()

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func login(t *testing.T, h http.Handler) OTPVerifyResponse {
	t.Helper()

	status, body := doJSON(t, h, http.MethodPost, "/api/v1/member/auth/send-otp", map[string]string{"phone_number": testPhone}, "")
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = doJSON(t, h, http.MethodPost, "/api/v1/member/auth/verify-otp",
		map[string]string{"phone_number": testPhone, "otp_code": testCode}, "")
	require.Equal(t, http.StatusOK, status, string(body))

	var data OTPVerifyResponse
	decodeSuccess(t, body, &data)
	return data
}

func TestOTPLoginFlow(t *testing.T) {
	// Arrange
	h := newTestServer(t, 0, entity.Subject{})

	// Act
	status, body := doJSON(t, h, http.MethodPost, "/api/v1/member/auth/send-otp", map[string]string{"phone_number": testPhone}, "")

	// Assert
	require.Equal(t, http.StatusOK, status, string(body))
	var sent OTPSendResponse
	env := decodeSuccess(t, body, &sent)
	assert.Equal(t, "OTP sent to your WhatsApp number", env.Message)
	assert.Equal(t, int64(600), sent.ExpiresIn)
	assert.Equal(t, "99998", sent.Member.MembershipNumber)

	// Act
	status, body = doJSON(t, h, http.MethodPost, "/api/v1/member/auth/verify-otp",
		map[string]string{"phone_number": testPhone, "otp_code": testCode}, "")

	// Assert
	require.Equal(t, http.StatusOK, status, string(body))
	var verified OTPVerifyResponse
	decodeSuccess(t, body, &verified)
	assert.Equal(t, "Bearer", verified.TokenType)
	assert.NotEmpty(t, verified.AccessToken)
	require.NotNil(t, verified.Member)
	assert.Equal(t, "1.234.56789", verified.Member.LicenseNumber)

	// Act
	status, body = doJSON(t, h, http.MethodGet, "/api/v1/member/me", nil, verified.AccessToken)

	// Assert
	require.Equal(t, http.StatusOK, status, string(body))
	var me ProfileResponse
	decodeSuccess(t, body, &me)
	assert.Equal(t, "member", me.Kind)
	assert.Equal(t, testPhone, me.PhoneNumber)
	assert.Equal(t, "Ar. Tester Iai Interaktif, IAI", me.Name)

	// Act: the code is single use
	status, body = doJSON(t, h, http.MethodPost, "/api/v1/member/auth/verify-otp",
		map[string]string{"phone_number": testPhone, "otp_code": testCode}, "")

	// Assert
	require.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "otp_expired", decodeError(t, body).Error["reason"])
}

func TestOTPSend_ErrorEnvelope(t *testing.T) {
	tests := []struct {
		name       string
		subject    entity.Subject
		payload    any
		wantStatus int
		wantError  map[string]string
	}{
		{
			name:       "invalid phone",
			payload:    map[string]string{"phone_number": "abc"},
			wantStatus: http.StatusBadRequest,
			wantError:  map[string]string{"phone_number": "phone_number must be a phone number of 8-15 digits"},
		},
		{
			name:       "unknown field",
			payload:    map[string]string{"phone": testPhone},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "no license",
			subject:    entity.Subject{Name: "No License", MembershipNumber: "1", LastPaymentAt: "2024"},
			payload:    map[string]string{"phone_number": testPhone},
			wantStatus: http.StatusForbidden,
			wantError:  map[string]string{"reason": "license_missing"},
		},
		{
			name:       "payment expired",
			subject:    entity.Subject{Name: "Lapsed", MembershipNumber: "2", LicenseNumber: "1.2.3", LastPaymentAt: "2019"},
			payload:    map[string]string{"phone_number": testPhone},
			wantStatus: http.StatusForbidden,
			wantError:  map[string]string{"reason": "payment_expired", "last_payment_year": "2019", "years_since_payment": "6"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			h := newTestServer(t, 0, tt.subject)

			// Act
			status, body := doJSON(t, h, http.MethodPost, "/api/v1/member/auth/send-otp", tt.payload, "")

			// Assert
			require.Equal(t, tt.wantStatus, status, string(body))
			env := decodeError(t, body)
			assert.NotEmpty(t, env.Message)
			if tt.wantError != nil {
				assert.Equal(t, tt.wantError, env.Error)
			}
		})
	}
}

func TestOTPVerify_Mismatch(t *testing.T) {
	// Arrange
	h := newTestServer(t, 0, entity.Subject{})
	status, _ := doJSON(t, h, http.MethodPost, "/api/v1/member/auth/send-otp", map[string]string{"phone_number": testPhone}, "")
	require.Equal(t, http.StatusOK, status)

	// Act
	status, body := doJSON(t, h, http.MethodPost, "/api/v1/member/auth/verify-otp",
		map[string]string{"phone_number": testPhone, "otp_code": "000000"}, "")

	// Assert
	require.Equal(t, http.StatusUnauthorized, status)
	env := decodeError(t, body)
	assert.Equal(t, "Invalid OTP", env.Message)
	assert.Equal(t, map[string]string{"reason": "otp_mismatch", "attempts_remaining": "2"}, env.Error)
}

func TestOTPSend_RateLimited(t *testing.T) {
	// Arrange
	h := newTestServer(t, 0.001, entity.Subject{})
	payload := map[string]string{"phone_number": testPhone}

	// Act
	var last int
	for range 3 {
		last, _ = doJSON(t, h, http.MethodPost, "/api/v1/member/auth/send-otp", payload, "")
	}

	// Assert
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestOTPSend_RateLimitIgnoresForwardedHeaders(t *testing.T) {
	// Arrange
	h := newTestServer(t, 0.001, entity.Subject{})
	payload := map[string]string{"phone_number": testPhone}

	// Act
	accepted := 0
	for i := range 10 {
		status, _ := doJSON(t, h, http.MethodPost, "/api/v1/member/auth/send-otp", payload, "",
			withHeader("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i)))
		if status == http.StatusOK {
			accepted++
		}
	}

	// Assert
	assert.Equal(t, 2, accepted, "only the burst gets through")
}

func TestAdminOTPEndpoints(t *testing.T) {
	// Arrange
	h := newTestServer(t, 0, entity.Subject{})
	path := "/api/v1/member/auth/otp/" + testPhone

	// Act & Assert: untrusted caller without a token
	status, _ := doJSON(t, h, http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusForbidden, status)

	// Act & Assert: allow-listed caller, nothing pending
	status, body := doJSON(t, h, http.MethodGet, path, nil, "", fromPeer(trustedIP))
	require.Equal(t, http.StatusOK, status, string(body))
	var st OTPStatusResponse
	decodeSuccess(t, body, &st)
	assert.False(t, st.Pending)

	status, _ = doJSON(t, h, http.MethodPost, "/api/v1/member/auth/send-otp", map[string]string{"phone_number": testPhone}, "")
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, h, http.MethodGet, path, nil, "", fromPeer(trustedIP))
	require.Equal(t, http.StatusOK, status)
	decodeSuccess(t, body, &st)
	assert.True(t, st.Pending)

	// Act & Assert: revoke
	status, body = doJSON(t, h, http.MethodDelete, path, nil, "", fromPeer(trustedIP))
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "Pending OTP revoked", decodeSuccess(t, body, nil).Message)

	status, body = doJSON(t, h, http.MethodPost, "/api/v1/member/auth/verify-otp",
		map[string]string{"phone_number": testPhone, "otp_code": testCode}, "")
	require.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "otp_expired", decodeError(t, body).Error["reason"])
}

func TestAdminOTPEndpoints_RejectUntrustedCallers(t *testing.T) {
	// Arrange
	h := newTestServer(t, 0, entity.Subject{})
	token := login(t, h).AccessToken
	path := "/api/v1/member/auth/otp/" + testPhone

	status, body := doJSON(t, h, http.MethodPost, "/api/v1/member/auth/send-otp", map[string]string{"phone_number": testPhone}, "")
	require.Equal(t, http.StatusOK, status, string(body))

	tests := []struct {
		name  string
		token string
		opts  []func(*http.Request)
	}{
		{name: "member token", token: token},
		{name: "spoofed forwarded for", opts: []func(*http.Request){withHeader("X-Forwarded-For", trustedIP)}},
		{name: "spoofed real ip with token", token: token, opts: []func(*http.Request){withHeader("X-Real-IP", trustedIP)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			status, _ := doJSON(t, h, http.MethodDelete, path, nil, tt.token, tt.opts...)

			// Assert
			assert.Equal(t, http.StatusForbidden, status)
		})
	}

	// the code is still pending and verifies
	status, body = doJSON(t, h, http.MethodPost, "/api/v1/member/auth/verify-otp",
		map[string]string{"phone_number": testPhone, "otp_code": testCode}, "")
	assert.Equal(t, http.StatusOK, status, string(body))
}

func TestMemberDirectory(t *testing.T) {
	// Arrange
	h := newTestServer(t, 0, entity.Subject{})
	token := login(t, h).AccessToken

	// Act
	status, body := doJSON(t, h, http.MethodGet, "/api/v1/member/directory/99998", nil, token)

	// Assert
	require.Equal(t, http.StatusOK, status, string(body))
	var dir DirectoryResponse
	decodeSuccess(t, body, &dir)
	assert.Equal(t, "99998", dir.MembershipNumber)
	assert.Contains(t, string(dir.Member), `"straNumber":"1.234.56789"`)

	// Act & Assert: unknown member
	status, _ = doJSON(t, h, http.MethodGet, "/api/v1/member/directory/12345", nil, token)
	assert.Equal(t, http.StatusNotFound, status)

	// Act & Assert: forged token
	status, _ = doJSON(t, h, http.MethodGet, "/api/v1/member/directory/99998", nil, token+"x")
	assert.Equal(t, http.StatusUnauthorized, status)
}
