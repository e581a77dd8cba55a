package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sotkanet-dashboard/internal/config"
	"github.com/sotkanet-dashboard/internal/domain"
	apierrors "github.com/sotkanet-dashboard/internal/pkg/errors"
)

func newFetcher(
	sotkanetRepo *MockSotkanetRepository,
	cache *MockDataCache,
	metadata *MockMetadataProvider,
) *FetcherUseCase {
	cfg := &config.SotkanetConfig{
		RegionID:  629,
		YearStart: 2018,
		YearEnd:   2023,
	}
	return NewFetcherUseCase(sotkanetRepo, cache, metadata, cfg, zap.NewNop())
}

func points(years ...int) []domain.DataPoint {
	pts := make([]domain.DataPoint, 0, len(years))
	for _, y := range years {
		pts = append(pts, domain.DataPoint{
			IndicatorID: 186,
			RegionID:    629,
			Year:        y,
			Gender:      domain.GenderTotal,
			Value:       floatVal(float64(y) / 100),
		})
	}
	return pts
}

func TestFetcherUseCase_FetchIndicatorData(t *testing.T) {
	ctx := context.Background()

	t.Run("cache miss fetches and writes through", func(t *testing.T) {
		sotkanetRepo := new(MockSotkanetRepository)
		cache := new(MockDataCache)
		metadata := new(MockMetadataProvider)

		metadata.On("Indicator", mock.Anything, 186).Return(nil, false)
		cache.On("Get", mock.Anything, mock.Anything).Return(nil, false, nil)
		sotkanetRepo.On("FetchData", mock.Anything, mock.Anything).Return(points(2020, 2021), nil)
		cache.On("Set", mock.Anything, mock.Anything, points(2020, 2021)).Return(nil)

		uc := newFetcher(sotkanetRepo, cache, metadata)
		table := uc.FetchIndicatorData(ctx, 186, 0, []int{2020, 2021}, []domain.Gender{domain.GenderTotal})

		require.Len(t, table.Rows, 2)
		assert.Equal(t, 186, table.IndicatorID)
		assert.Equal(t, 629, table.RegionID)
		sotkanetRepo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("cache hit skips the network", func(t *testing.T) {
		sotkanetRepo := new(MockSotkanetRepository)
		cache := new(MockDataCache)
		metadata := new(MockMetadataProvider)

		metadata.On("Indicator", mock.Anything, 186).Return(nil, false)
		cache.On("Get", mock.Anything, mock.Anything).Return(points(2020), true, nil)

		uc := newFetcher(sotkanetRepo, cache, metadata)
		table := uc.FetchIndicatorData(ctx, 186, 0, []int{2020}, []domain.Gender{domain.GenderTotal})

		require.Len(t, table.Rows, 1)
		sotkanetRepo.AssertNotCalled(t, "FetchData")
	})

	t.Run("years outside the known range skip the fetch entirely", func(t *testing.T) {
		sotkanetRepo := new(MockSotkanetRepository)
		cache := new(MockDataCache)
		metadata := new(MockMetadataProvider)

		meta := &domain.IndicatorMetadata{
			ID:    186,
			Range: &domain.YearRange{Start: 1990, End: 2019},
		}
		metadata.On("Indicator", mock.Anything, 186).Return(meta, true)

		uc := newFetcher(sotkanetRepo, cache, metadata)
		table := uc.FetchIndicatorData(ctx, 186, 0, []int{2022, 2023}, []domain.Gender{domain.GenderTotal})

		assert.True(t, table.Empty())
		sotkanetRepo.AssertNotCalled(t, "FetchData")
		cache.AssertNotCalled(t, "Get")
	})

	t.Run("requested years are clipped to the metadata range", func(t *testing.T) {
		sotkanetRepo := new(MockSotkanetRepository)
		cache := new(MockDataCache)
		metadata := new(MockMetadataProvider)

		meta := &domain.IndicatorMetadata{
			ID:    186,
			Range: &domain.YearRange{Start: 2019, End: 2021},
		}
		metadata.On("Indicator", mock.Anything, 186).Return(meta, true)
		cache.On("Get", mock.Anything, mock.Anything).Return(nil, false, nil)

		var captured domain.IndicatorQuery
		sotkanetRepo.On("FetchData", mock.Anything, mock.MatchedBy(func(q domain.IndicatorQuery) bool {
			captured = q
			return true
		})).Return(points(2019, 2020, 2021), nil)
		cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		uc := newFetcher(sotkanetRepo, cache, metadata)
		uc.FetchIndicatorData(ctx, 186, 0, []int{2018, 2019, 2020, 2021, 2022}, []domain.Gender{domain.GenderTotal})

		assert.Equal(t, []int{2019, 2020, 2021}, captured.Years)
	})

	t.Run("api failure degrades to an empty table", func(t *testing.T) {
		sotkanetRepo := new(MockSotkanetRepository)
		cache := new(MockDataCache)
		metadata := new(MockMetadataProvider)

		metadata.On("Indicator", mock.Anything, 186).Return(nil, false)
		cache.On("Get", mock.Anything, mock.Anything).Return(nil, false, nil)
		sotkanetRepo.On("FetchData", mock.Anything, mock.Anything).
			Return(nil, &apierrors.TimeoutError{URL: "http://x", Attempts: 3})

		uc := newFetcher(sotkanetRepo, cache, metadata)
		table := uc.FetchIndicatorData(ctx, 186, 0, []int{2020}, []domain.Gender{domain.GenderTotal})

		assert.True(t, table.Empty())
		assert.Equal(t, 186, table.IndicatorID)
	})

	t.Run("rows without year or value are dropped and the rest sorted", func(t *testing.T) {
		sotkanetRepo := new(MockSotkanetRepository)
		cache := new(MockDataCache)
		metadata := new(MockMetadataProvider)

		raw := []domain.DataPoint{
			{IndicatorID: 186, RegionID: 629, Year: 2021, Gender: domain.GenderTotal, Value: floatVal(2.0)},
			{IndicatorID: 186, RegionID: 629, Year: 2020, Gender: domain.GenderTotal, Value: nil},
			{IndicatorID: 186, RegionID: 629, Year: 0, Gender: domain.GenderTotal, Value: floatVal(9.0)},
			{IndicatorID: 186, RegionID: 629, Year: 2019, Gender: domain.GenderTotal, Value: floatVal(1.0)},
		}

		metadata.On("Indicator", mock.Anything, 186).Return(nil, false)
		cache.On("Get", mock.Anything, mock.Anything).Return(raw, true, nil)

		uc := newFetcher(sotkanetRepo, cache, metadata)
		table := uc.FetchIndicatorData(ctx, 186, 0, []int{2019, 2020, 2021}, []domain.Gender{domain.GenderTotal})

		require.Len(t, table.Rows, 2)
		assert.Equal(t, 2019, table.Rows[0].Year)
		assert.Equal(t, 2021, table.Rows[1].Year)
	})

	t.Run("default years and region from config", func(t *testing.T) {
		sotkanetRepo := new(MockSotkanetRepository)
		cache := new(MockDataCache)
		metadata := new(MockMetadataProvider)

		metadata.On("Indicator", mock.Anything, 186).Return(nil, false)
		cache.On("Get", mock.Anything, mock.Anything).Return(nil, false, nil)

		var captured domain.IndicatorQuery
		sotkanetRepo.On("FetchData", mock.Anything, mock.MatchedBy(func(q domain.IndicatorQuery) bool {
			captured = q
			return true
		})).Return([]domain.DataPoint{}, nil)
		cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		uc := newFetcher(sotkanetRepo, cache, metadata)
		uc.FetchIndicatorData(ctx, 186, 0, nil, nil)

		assert.Equal(t, 629, captured.RegionID)
		assert.Equal(t, []int{2018, 2019, 2020, 2021, 2022, 2023}, captured.Years)
		assert.Equal(t, domain.AllGenders(), captured.Genders)
	})
}

func TestFetcherUseCase_FetchMultiple(t *testing.T) {
	ctx := context.Background()

	sotkanetRepo := new(MockSotkanetRepository)
	cache := new(MockDataCache)
	metadata := new(MockMetadataProvider)

	metadata.On("Indicator", mock.Anything, mock.Anything).Return(nil, false)
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, false, nil)
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	sotkanetRepo.On("FetchData", mock.Anything, mock.MatchedBy(func(q domain.IndicatorQuery) bool {
		return q.IndicatorID == 186
	})).Return(points(2020), nil)
	sotkanetRepo.On("FetchData", mock.Anything, mock.MatchedBy(func(q domain.IndicatorQuery) bool {
		return q.IndicatorID == 322
	})).Return(nil, &apierrors.HTTPError{StatusCode: 500, URL: "http://x"})

	uc := newFetcher(sotkanetRepo, cache, metadata)
	tables, failures := uc.FetchMultiple(ctx, []int{186, 322}, 0, []int{2020}, []domain.Gender{domain.GenderTotal})

	require.Len(t, tables, 1)
	assert.Contains(t, tables, 186)
	require.Len(t, failures, 1)
	assert.Contains(t, failures, 322)
}

func TestFetcherUseCase_LatestValue(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the last known total value", func(t *testing.T) {
		sotkanetRepo := new(MockSotkanetRepository)
		cache := new(MockDataCache)
		metadata := new(MockMetadataProvider)

		metadata.On("Indicator", mock.Anything, 186).Return(nil, false)
		cache.On("Get", mock.Anything, mock.Anything).Return(points(2019, 2021, 2020), true, nil)

		uc := newFetcher(sotkanetRepo, cache, metadata)
		value, year := uc.LatestValue(ctx, 186, 0)

		require.NotNil(t, value)
		require.NotNil(t, year)
		assert.Equal(t, 2021, *year)
		assert.InDelta(t, 20.21, *value, 1e-9)
	})

	t.Run("nil when no data", func(t *testing.T) {
		sotkanetRepo := new(MockSotkanetRepository)
		cache := new(MockDataCache)
		metadata := new(MockMetadataProvider)

		metadata.On("Indicator", mock.Anything, 186).Return(nil, false)
		cache.On("Get", mock.Anything, mock.Anything).Return([]domain.DataPoint{}, true, nil)

		uc := newFetcher(sotkanetRepo, cache, metadata)
		value, year := uc.LatestValue(ctx, 186, 0)

		assert.Nil(t, value)
		assert.Nil(t, year)
	})
}
