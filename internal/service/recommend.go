package service

import (
	"context"
	"strings"

	"nainai/backend/internal/domain"
)

func (s *Service) Recommend(ctx context.Context, preference string) (domain.RecommendationResponse, error) {
	preference = strings.TrimSpace(preference)
	if preference == "" {
		err := invalid("preference is required")
		return domain.RecommendationResponse{Message: "preference is required"}, err
	}
	return s.recommender.Recommend(ctx, preference, s.profiles(ctx)), nil
}
