package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/memberauth/internal/member/entity"
	"github.com/shandysiswandi/memberauth/internal/pkg/instrument"
)

const maxResponseBytes = 1 << 20

type challengeRequest struct {
	NoWhatsapp string `json:"no_whatsapp"`
	OTPCode    string `json:"otp_code"`
}

type memberData struct {
	Name             string `json:"name"`
	MembershipNumber string `json:"membershipNumber"`
	StraNumber       string `json:"straNumber"`
	NoWa             string `json:"noWa"`
	LastPaymentAt    string `json:"lastPaymentAt"`
	LastPayment      string `json:"lastPayment"`
}

// challengeResponse covers both shapes the API answers with: the nested
// success envelope and the flat {success:false, error, message} one.
type challengeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Data    *struct {
		Success bool        `json:"success"`
		Message string      `json:"message"`
		Data    *memberData `json:"data"`
	} `json:"data"`
}

func (r challengeResponse) reason() string {
	for _, s := range []string{r.Message, r.Error} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	if r.Data != nil {
		return strings.TrimSpace(r.Data.Message)
	}
	return ""
}

type lookupRequest struct {
	MembershipNumber string `json:"membershipNumber"`
}

// Remote calls the association API over HTTP.
type Remote struct {
	client   *http.Client
	url      string
	usersURL string
	ins      instrument.Instrumentation
}

func NewRemote(client *http.Client, url, usersURL string, ins instrument.Instrumentation) *Remote {
	return &Remote{client: client, url: url, usersURL: usersURL, ins: ins}
}

func (r *Remote) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return r.ins.Tracer("member.outbound.verifier").Start(ctx, name)
}

func (r *Remote) RequestChallenge(ctx context.Context, phone, code string) (*entity.Subject, error) {
	ctx, span := r.startSpan(ctx, "RequestChallenge")
	defer span.End()

	status, body, err := r.post(ctx, r.url, challengeRequest{NoWhatsapp: phone, OTPCode: code})
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", status))

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		slog.WarnContext(ctx, "verifier answered with non-success status", "status", status, "body", string(body))
		return nil, fail(span, fmt.Errorf("%w: status %d", entity.ErrVerifierUnavailable, status))
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fail(span, fmt.Errorf("%w: empty response", entity.ErrVerifierUnavailable))
	}

	var resp challengeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fail(span, fmt.Errorf("%w: decode response: %w", entity.ErrVerifierUnavailable, err))
	}

	if !resp.Success || resp.Data == nil || !resp.Data.Success || resp.Data.Data == nil {
		return nil, fail(span, &entity.VerifierRejection{Reason: resp.reason()})
	}

	m := resp.Data.Data
	return &entity.Subject{
		Name:             m.Name,
		MembershipNumber: m.MembershipNumber,
		LicenseNumber:    m.StraNumber,
		PhoneNumber:      m.NoWa,
		LastPaymentAt:    m.LastPaymentAt,
		LastPayment:      m.LastPayment,
	}, nil
}

// LookupMember returns the directory record as the API sent it.
func (r *Remote) LookupMember(ctx context.Context, membershipNumber string) (json.RawMessage, error) {
	ctx, span := r.startSpan(ctx, "LookupMember")
	defer span.End()

	status, body, err := r.post(ctx, r.usersURL, lookupRequest{MembershipNumber: membershipNumber})
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", status))

	switch {
	case status == http.StatusNotFound:
		return nil, entity.ErrMemberNotFound
	case status < http.StatusOK || status >= http.StatusMultipleChoices:
		return nil, fail(span, fmt.Errorf("%w: status %d", entity.ErrVerifierUnavailable, status))
	case !json.Valid(body):
		return nil, fail(span, fmt.Errorf("%w: invalid json response", entity.ErrVerifierUnavailable))
	}

	return json.RawMessage(body), nil
}

func (r *Remote) post(ctx context.Context, url string, payload any) (int, []byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", entity.ErrVerifierUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read response: %w", entity.ErrVerifierUnavailable, err)
	}

	return resp.StatusCode, body, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
