package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sotkanet-dashboard/internal/domain"
)

func tableWithYears(years ...int) domain.IndicatorTable {
	table := domain.IndicatorTable{IndicatorID: 186, RegionID: 629}
	for _, y := range years {
		table.Rows = append(table.Rows, domain.TableRow{
			Year:   y,
			Gender: domain.GenderTotal,
			Value:  float64(y),
		})
	}
	return table
}

func TestValidationUseCase_Validate(t *testing.T) {
	ctx := context.Background()
	defaultYears := []int{2018, 2019, 2020, 2021, 2022, 2023}

	t.Run("partial data yields proportional completeness", func(t *testing.T) {
		fetcher := new(MockTableFetcher)
		fetcher.On("FetchMultiple", mock.Anything, []int{186}, 0, defaultYears, mock.Anything).
			Return(map[int]domain.IndicatorTable{186: tableWithYears(2020, 2021)}, map[int]error{})

		uc := NewValidationUseCase(fetcher, defaultYears, zap.NewNop())
		result := uc.Validate(ctx, 186, 0, nil, nil)

		assert.Equal(t, domain.ValidationOK, result.Status)
		assert.True(t, result.HasData)
		assert.Equal(t, []int{2020, 2021}, result.AvailableYears)
		assert.Equal(t, []int{2018, 2019, 2022, 2023}, result.MissingYears)
		assert.InDelta(t, 33.33, result.Completeness, 0.01)
		assert.Equal(t, 2, result.DataPoints)
	})

	t.Run("full data is 100 percent complete", func(t *testing.T) {
		fetcher := new(MockTableFetcher)
		fetcher.On("FetchMultiple", mock.Anything, []int{186}, 0, []int{2020, 2021}, mock.Anything).
			Return(map[int]domain.IndicatorTable{186: tableWithYears(2020, 2021)}, map[int]error{})

		uc := NewValidationUseCase(fetcher, defaultYears, zap.NewNop())
		result := uc.Validate(ctx, 186, 0, []int{2020, 2021}, nil)

		assert.InDelta(t, 100.0, result.Completeness, 1e-9)
		assert.Empty(t, result.MissingYears)
	})

	t.Run("empty table reports NO_DATA", func(t *testing.T) {
		fetcher := new(MockTableFetcher)
		fetcher.On("FetchMultiple", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(map[int]domain.IndicatorTable{186: {IndicatorID: 186}}, map[int]error{})

		uc := NewValidationUseCase(fetcher, defaultYears, zap.NewNop())
		result := uc.Validate(ctx, 186, 0, []int{2020}, nil)

		assert.Equal(t, domain.ValidationNoData, result.Status)
		assert.False(t, result.HasData)
		assert.Equal(t, []int{2020}, result.MissingYears)
		assert.Zero(t, result.Completeness)
	})

	t.Run("api failure reports ERROR with the message", func(t *testing.T) {
		fetcher := new(MockTableFetcher)
		fetcher.On("FetchMultiple", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(map[int]domain.IndicatorTable{}, map[int]error{186: errors.New("upstream down")})

		uc := NewValidationUseCase(fetcher, defaultYears, zap.NewNop())
		result := uc.Validate(ctx, 186, 0, []int{2020}, nil)

		assert.Equal(t, domain.ValidationError, result.Status)
		assert.Equal(t, "upstream down", result.Error)
	})

	t.Run("available genders are collected", func(t *testing.T) {
		table := domain.IndicatorTable{
			IndicatorID: 186,
			Rows: []domain.TableRow{
				{Year: 2020, Gender: domain.GenderTotal, Value: 1},
				{Year: 2020, Gender: domain.GenderMale, Value: 2},
				{Year: 2020, Gender: domain.GenderFemale, Value: 3},
				{Year: 2021, Gender: domain.GenderTotal, Value: 4},
			},
		}

		fetcher := new(MockTableFetcher)
		fetcher.On("FetchMultiple", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(map[int]domain.IndicatorTable{186: table}, map[int]error{})

		uc := NewValidationUseCase(fetcher, defaultYears, zap.NewNop())
		result := uc.Validate(ctx, 186, 0, []int{2020, 2021}, domain.AllGenders())

		require.Len(t, result.AvailableGenders, 3)
		assert.Equal(t, []domain.Gender{domain.GenderFemale, domain.GenderMale, domain.GenderTotal}, result.AvailableGenders)
		assert.Equal(t, 4, result.DataPoints)
	})
}

func TestValidationUseCase_ValidateAll(t *testing.T) {
	ctx := context.Background()

	fetcher := new(MockTableFetcher)
	fetcher.On("FetchMultiple", mock.Anything, []int{186}, 0, mock.Anything, mock.Anything).
		Return(map[int]domain.IndicatorTable{186: tableWithYears(2020)}, map[int]error{})
	fetcher.On("FetchMultiple", mock.Anything, []int{322}, 0, mock.Anything, mock.Anything).
		Return(map[int]domain.IndicatorTable{322: {IndicatorID: 322}}, map[int]error{})

	uc := NewValidationUseCase(fetcher, []int{2020}, zap.NewNop())
	results := uc.ValidateAll(ctx, []int{186, 322}, 0, nil)

	require.Len(t, results, 2)
	assert.Equal(t, domain.ValidationOK, results[0].Status)
	assert.Equal(t, domain.ValidationNoData, results[1].Status)
}
