package mq

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/memberauth/internal/member/usecase"
	"github.com/shandysiswandi/memberauth/internal/pkg/instrument"
	"github.com/shandysiswandi/memberauth/internal/pkg/messaging"
	"github.com/shandysiswandi/memberauth/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishOTPIssued(ctx context.Context, msg usecase.OTPIssuedEvent) error {
	ctx, span := m.ins.Tracer("member.outbound.mq").Start(ctx, "PublishOTPIssued")
	defer span.End()

	return m.publish(ctx, span, event.OTPIssuedSubject, event.OTPIssuedMessage{
		PhoneNumber:      msg.PhoneNumber,
		MembershipNumber: msg.MembershipNumber,
		IssuedAt:         msg.IssuedAt,
		ExpiresAt:        msg.ExpiresAt,
	})
}

func (m *Messaging) PublishOTPVerified(ctx context.Context, msg usecase.OTPVerifiedEvent) error {
	ctx, span := m.ins.Tracer("member.outbound.mq").Start(ctx, "PublishOTPVerified")
	defer span.End()

	return m.publish(ctx, span, event.OTPVerifiedSubject, event.OTPVerifiedMessage{
		PhoneNumber:      msg.PhoneNumber,
		MembershipNumber: msg.MembershipNumber,
		TokenKind:        msg.TokenKind,
		VerifiedAt:       msg.VerifiedAt,
	})
}

func (m *Messaging) publish(ctx context.Context, span trace.Span, subject string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := m.client.Publish(ctx, subject, messaging.Message{
		Body:    body,
		Headers: map[string]string{keyOfCorrelationID: instrument.GetCorrelationID(ctx)},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
