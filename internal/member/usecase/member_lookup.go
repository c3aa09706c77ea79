package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/memberauth/internal/member/entity"
	"github.com/shandysiswandi/memberauth/internal/pkg/goerror"
)

type MemberLookupInput struct {
	MembershipNumber string `json:"membership_number" validate:"required,numeric,max=32"`
}

// MemberLookup proxies the association's member directory. The upstream
// payload is passed through untouched.
func (s *Usecase) MemberLookup(ctx context.Context, in MemberLookupInput) (json.RawMessage, error) {
	ctx, span := s.startSpan(ctx, "MemberLookup")
	defer span.End()

	in.MembershipNumber = strings.TrimSpace(in.MembershipNumber)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	member, err := s.repoVerifier.LookupMember(ctx, in.MembershipNumber)
	if errors.Is(err, entity.ErrMemberNotFound) {
		return nil, goerror.NewBusiness("Member not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to lookup member directory", "membership_number", in.MembershipNumber, "error", err)
		return nil, goerror.NewUpstream(err, "Member directory unavailable", goerror.CodeBadGateway)
	}

	return member, nil
}
