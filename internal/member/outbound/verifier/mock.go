package verifier

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/memberauth/internal/member/entity"
	"github.com/shandysiswandi/memberauth/internal/pkg/instrument"
)

// DefaultMockSubject is the member every phone number resolves to in mock mode.
var DefaultMockSubject = entity.Subject{
	Name:             "Ar. Tester Iai Interaktif, IAI",
	MembershipNumber: "99998",
	LicenseNumber:    "1.234.56789",
	LastPaymentAt:    "2024",
	LastPayment:      "2026",
}

// Mock never leaves the process. It logs the code so it can be typed in by
// hand during local development.
type Mock struct {
	subject entity.Subject
	ins     instrument.Instrumentation
}

func NewMock(subject entity.Subject, ins instrument.Instrumentation) *Mock {
	if subject == (entity.Subject{}) {
		subject = DefaultMockSubject
	}
	return &Mock{subject: subject, ins: ins}
}

func (m *Mock) RequestChallenge(ctx context.Context, phone, code string) (*entity.Subject, error) {
	ctx, span := m.ins.Tracer("member.outbound.verifier").Start(ctx, "MockRequestChallenge")
	defer span.End()

	slog.InfoContext(ctx, "mock verifier issued code", "phone_number", phone, "code", code)

	subject := m.subject
	subject.PhoneNumber = phone
	return &subject, nil
}

func (m *Mock) LookupMember(ctx context.Context, membershipNumber string) (json.RawMessage, error) {
	_, span := m.ins.Tracer("member.outbound.verifier").Start(ctx, "MockLookupMember")
	defer span.End()

	if membershipNumber != m.subject.MembershipNumber {
		return nil, entity.ErrMemberNotFound
	}

	return json.Marshal(map[string]string{
		"name":             m.subject.Name,
		"membershipNumber": m.subject.MembershipNumber,
		"straNumber":       m.subject.LicenseNumber,
		"lastPaymentAt":    m.subject.LastPaymentAt,
		"lastPayment":      m.subject.LastPayment,
	})
}
