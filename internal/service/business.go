package service

import (
	"context"

	apperrors "github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/errors"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/google"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/model"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/repository"
)

type BusinessProfileService struct {
	google   *google.Client
	tokens   *TokenService
	connRepo repository.ConnectionRepository
}

func NewBusinessProfileService(
	googleClient *google.Client,
	tokens *TokenService,
	connRepo repository.ConnectionRepository,
) *BusinessProfileService {
	return &BusinessProfileService{google: googleClient, tokens: tokens, connRepo: connRepo}
}

// AccountLocations groups one Business Profile account with its locations.
type AccountLocations struct {
	Account   google.BusinessAccount    `json:"account"`
	Locations []google.BusinessLocation `json:"locations"`
}

// ListLocations returns the connected account's Business Profile locations,
// refreshing the access token first if it is near expiry.
func (s *BusinessProfileService) ListLocations(ctx context.Context, userID string) ([]AccountLocations, error) {
	conn, err := s.connRepo.FindActiveByUserAndIntegration(ctx, userID, model.IntegrationBusinessProfile)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if conn == nil {
		return nil, apperrors.NotFound("Business Profile connection")
	}

	conn, err = s.tokens.EnsureFresh(ctx, conn)
	if err != nil {
		return nil, err
	}

	accounts, err := s.google.ListBusinessAccounts(ctx, conn.AccessToken)
	if err != nil {
		return nil, err
	}

	result := make([]AccountLocations, 0, len(accounts))
	for _, account := range accounts {
		locations, err := s.google.ListBusinessLocations(ctx, conn.AccessToken, account.Name)
		if err != nil {
			return nil, err
		}
		result = append(result, AccountLocations{Account: account, Locations: locations})
	}
	return result, nil
}
