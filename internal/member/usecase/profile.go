package usecase

import (
	"context"

	"github.com/shandysiswandi/memberauth/internal/pkg/goerror"
	"github.com/shandysiswandi/memberauth/internal/pkg/jwt"
)

type ProfileInput struct{}

type ProfileOutput struct {
	Kind             string
	PhoneNumber      string
	Name             string
	MembershipNumber string
	LicenseNumber    string
	ExpiresAt        int64
}

func (s *Usecase) Profile(ctx context.Context, _ ProfileInput) (*ProfileOutput, error) {
	_, span := s.startSpan(ctx, "Profile")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	out := &ProfileOutput{
		Kind:        string(clm.Kind),
		PhoneNumber: clm.PhoneNumber,
	}
	if clm.ExpiresAt != nil {
		out.ExpiresAt = clm.ExpiresAt.Unix()
	}
	if clm.IsFullIdentity() {
		out.Name = clm.Name
		out.MembershipNumber = clm.MembershipNumber
		out.LicenseNumber = clm.LicenseNumber
	}

	return out, nil
}
