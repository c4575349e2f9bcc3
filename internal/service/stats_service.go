package service

import (
	"go-storefront/internal/repository"
)

// Stats is the back-office overview
type Stats struct {
	Catalog *repository.CatalogStats `json:"catalog"`
	Orders  []repository.StatusCount `json:"orders_by_status"`
}

type StatsService interface {
	GetStats() (*Stats, error)
}

type statsService struct {
	statsRepo repository.StatsRepository
}

func NewStatsService(statsRepo repository.StatsRepository) StatsService {
	return &statsService{statsRepo: statsRepo}
}

func (s *statsService) GetStats() (*Stats, error) {
	catalog, err := s.statsRepo.GetCatalogStats()
	if err != nil {
		return nil, err
	}

	orders, err := s.statsRepo.CountOrdersByStatus()
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []repository.StatusCount{}
	}

	return &Stats{Catalog: catalog, Orders: orders}, nil
}
