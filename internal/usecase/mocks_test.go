package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sotkanet-dashboard/internal/domain"
)

// MockSotkanetRepository - мок клиента Sotkanet API
type MockSotkanetRepository struct {
	mock.Mock
}

func (m *MockSotkanetRepository) FetchData(ctx context.Context, query domain.IndicatorQuery) ([]domain.DataPoint, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DataPoint), args.Error(1)
}

func (m *MockSotkanetRepository) FetchMetadata(ctx context.Context, indicatorID int) (*domain.IndicatorMetadata, error) {
	args := m.Called(ctx, indicatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IndicatorMetadata), args.Error(1)
}

func (m *MockSotkanetRepository) FetchRegions(ctx context.Context) ([]domain.Region, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Region), args.Error(1)
}

func (m *MockSotkanetRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockDataCache - мок кеша данных
type MockDataCache struct {
	mock.Mock
}

func (m *MockDataCache) Get(ctx context.Context, query domain.IndicatorQuery) ([]domain.DataPoint, bool, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]domain.DataPoint), args.Bool(1), args.Error(2)
}

func (m *MockDataCache) Set(ctx context.Context, query domain.IndicatorQuery, payload []domain.DataPoint) error {
	args := m.Called(ctx, query, payload)
	return args.Error(0)
}

func (m *MockDataCache) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockMetadataProvider - мок поставщика метаданных для фетчера
type MockMetadataProvider struct {
	mock.Mock
}

func (m *MockMetadataProvider) Indicator(ctx context.Context, indicatorID int) (*domain.IndicatorMetadata, bool) {
	args := m.Called(ctx, indicatorID)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*domain.IndicatorMetadata), args.Bool(1)
}

// MockMetadataRepository - мок файлового хранилища снимка
type MockMetadataRepository struct {
	mock.Mock
}

func (m *MockMetadataRepository) Load() (*domain.MetadataSnapshot, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MetadataSnapshot), args.Error(1)
}

func (m *MockMetadataRepository) Save(snapshot *domain.MetadataSnapshot) error {
	args := m.Called(snapshot)
	return args.Error(0)
}

// MockTableFetcher - мок фетчера таблиц для валидатора и экспорта
type MockTableFetcher struct {
	mock.Mock
}

func (m *MockTableFetcher) FetchIndicatorData(ctx context.Context, indicatorID, regionID int, years []int, genders []domain.Gender) domain.IndicatorTable {
	args := m.Called(ctx, indicatorID, regionID, years, genders)
	return args.Get(0).(domain.IndicatorTable)
}

func (m *MockTableFetcher) FetchMultiple(ctx context.Context, indicatorIDs []int, regionID int, years []int, genders []domain.Gender) (map[int]domain.IndicatorTable, map[int]error) {
	args := m.Called(ctx, indicatorIDs, regionID, years, genders)
	return args.Get(0).(map[int]domain.IndicatorTable), args.Get(1).(map[int]error)
}

func floatVal(v float64) *float64 { return &v }
