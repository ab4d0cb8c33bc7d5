package repository

import (
	"context"

	"github.com/nadmax/servicetime/internal/repository/models"
)

type ServiceRepository interface {
	GetService(ctx context.Context, serviceID string) (*models.ServiceRecord, error)
	SaveService(ctx context.Context, s *models.ServiceRecord) error
	CompleteService(ctx context.Context, serviceID string, waitMs int) error
	LogPartsConsumption(ctx context.Context, serviceID, carModel string, parts map[string]int) error
	GetServiceStats(ctx context.Context, hours int) ([]models.ServiceStats, error)
	GetRecentServices(ctx context.Context, limit int) ([]models.ServiceRecord, error)
	GetServicesByModel(ctx context.Context, carModel string, limit int) ([]models.ServiceRecord, error)
	GetPartsConsumption(ctx context.Context, carModel string, limit int) ([]models.PartsConsumption, error)
	Close() error
}
