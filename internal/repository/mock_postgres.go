package repository

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/nadmax/servicetime/internal/repository/models"
)

type MockPostgresRepository struct {
	mu                       sync.Mutex
	GetServiceCalls          []string
	SaveServiceCalls         []SaveServiceCall
	CompleteServiceCalls     []CompleteServiceCall
	LogPartsConsumptionCalls []LogPartsConsumptionCall
	Services                 map[string]*models.ServiceRecord
	Consumption              []models.PartsConsumption
	ServiceStats             []models.ServiceStats
	RecentServices           []models.ServiceRecord
	GetServiceError          error
	SaveServiceError         error
	CompleteServiceError     error
	LogPartsConsumptionError error
	GetServiceStatsError     error
	GetRecentServicesError   error
	GetServicesByModelError  error
	GetPartsConsumptionError error
}

type SaveServiceCall struct {
	Service *models.ServiceRecord
}

type CompleteServiceCall struct {
	ServiceID string
	WaitMs    int
}

type LogPartsConsumptionCall struct {
	ServiceID string
	CarModel  string
	Parts     map[string]int
}

func NewMockPostgresRepository() *MockPostgresRepository {
	return &MockPostgresRepository{
		Services:       make(map[string]*models.ServiceRecord),
		Consumption:    make([]models.PartsConsumption, 0),
		ServiceStats:   make([]models.ServiceStats, 0),
		RecentServices: make([]models.ServiceRecord, 0),
	}
}

func (m *MockPostgresRepository) GetService(ctx context.Context, serviceID string) (*models.ServiceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetServiceCalls = append(m.GetServiceCalls, serviceID)

	if m.GetServiceError != nil {
		return nil, m.GetServiceError
	}

	s, exists := m.Services[serviceID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, serviceID)
	}

	serviceCopy := *s
	return &serviceCopy, nil
}

func (m *MockPostgresRepository) SaveService(ctx context.Context, s *models.ServiceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveServiceCalls = append(m.SaveServiceCalls, SaveServiceCall{Service: s})

	if m.SaveServiceError != nil {
		return m.SaveServiceError
	}

	serviceCopy := *s
	m.Services[s.ServiceID] = &serviceCopy
	return nil
}

func (m *MockPostgresRepository) CompleteService(ctx context.Context, serviceID string, waitMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CompleteServiceCalls = append(m.CompleteServiceCalls, CompleteServiceCall{
		ServiceID: serviceID,
		WaitMs:    waitMs,
	})

	if m.CompleteServiceError != nil {
		return m.CompleteServiceError
	}

	if s, exists := m.Services[serviceID]; exists {
		s.Status = "completed"
		s.WaitMs = &waitMs
	}

	return nil
}

func (m *MockPostgresRepository) LogPartsConsumption(ctx context.Context, serviceID, carModel string, parts map[string]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := LogPartsConsumptionCall{
		ServiceID: serviceID,
		CarModel:  carModel,
		Parts:     maps.Clone(parts),
	}
	m.LogPartsConsumptionCalls = append(m.LogPartsConsumptionCalls, call)

	if m.LogPartsConsumptionError != nil {
		return m.LogPartsConsumptionError
	}

	m.Consumption = append(m.Consumption, models.PartsConsumption{
		ServiceID: serviceID,
		CarModel:  carModel,
		Parts:     call.Parts,
	})

	return nil
}

func (m *MockPostgresRepository) GetServiceStats(ctx context.Context, hours int) ([]models.ServiceStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetServiceStatsError != nil {
		return nil, m.GetServiceStatsError
	}

	return m.ServiceStats, nil
}

func (m *MockPostgresRepository) GetRecentServices(ctx context.Context, limit int) ([]models.ServiceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetRecentServicesError != nil {
		return nil, m.GetRecentServicesError
	}

	if len(m.RecentServices) > limit {
		return m.RecentServices[:limit], nil
	}

	return m.RecentServices, nil
}

func (m *MockPostgresRepository) GetServicesByModel(ctx context.Context, carModel string, limit int) ([]models.ServiceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetServicesByModelError != nil {
		return nil, m.GetServicesByModelError
	}

	var filtered []models.ServiceRecord
	for _, s := range m.RecentServices {
		if strings.EqualFold(s.CarModel, carModel) {
			filtered = append(filtered, s)
			if len(filtered) >= limit {
				break
			}
		}
	}

	return filtered, nil
}

func (m *MockPostgresRepository) GetPartsConsumption(ctx context.Context, carModel string, limit int) ([]models.PartsConsumption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetPartsConsumptionError != nil {
		return nil, m.GetPartsConsumptionError
	}

	var history []models.PartsConsumption
	for _, c := range m.Consumption {
		if strings.EqualFold(c.CarModel, carModel) {
			history = append(history, c)
			if len(history) >= limit {
				break
			}
		}
	}

	return history, nil
}

func (m *MockPostgresRepository) Close() error {
	return nil
}

func (m *MockPostgresRepository) GetSaveServiceCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.SaveServiceCalls)
}

func (m *MockPostgresRepository) GetCompleteServiceCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.CompleteServiceCalls)
}

func (m *MockPostgresRepository) GetLogPartsConsumptionCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.LogPartsConsumptionCalls)
}

func (m *MockPostgresRepository) WasServiceSaved(serviceID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, exists := m.Services[serviceID]
	return exists
}

func (m *MockPostgresRepository) GetServiceStatus(serviceID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, exists := m.Services[serviceID]; exists {
		return s.Status, true
	}

	return "", false
}

func (m *MockPostgresRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetServiceCalls = nil
	m.SaveServiceCalls = nil
	m.CompleteServiceCalls = nil
	m.LogPartsConsumptionCalls = nil
	m.Services = make(map[string]*models.ServiceRecord)
	m.Consumption = nil
}
