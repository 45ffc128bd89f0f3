package api

import (
	"context"
	"net/http"

	"github.com/Joseda-hg/supertask/internal/model"
)

type DashboardService struct {
	client *Client
}

func (s *DashboardService) Stats(ctx context.Context) (model.DashboardStats, error) {
	var stats model.DashboardStats
	err := s.client.Do(ctx, http.MethodGet, "/dashboard/stats/", nil, &stats)
	return stats, err
}

func (s *DashboardService) Quote(ctx context.Context) (model.Quote, error) {
	var quote model.Quote
	err := s.client.Do(ctx, http.MethodGet, "/dashboard/quote/", nil, &quote)
	return quote, err
}
