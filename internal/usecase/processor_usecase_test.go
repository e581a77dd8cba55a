package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sotkanet-dashboard/internal/domain"
)

func seriesTable(values ...float64) domain.IndicatorTable {
	table := domain.IndicatorTable{IndicatorID: 186, RegionID: 629}
	for i, v := range values {
		table.Rows = append(table.Rows, domain.TableRow{
			Year:   2018 + i,
			Gender: domain.GenderTotal,
			Value:  v,
		})
	}
	return table
}

func TestProcessorUseCase_Statistics(t *testing.T) {
	uc := NewProcessorUseCase(zap.NewNop())

	t.Run("summary over a total series", func(t *testing.T) {
		stats := uc.Statistics(seriesTable(10, 20, 30, 40))

		require.NotNil(t, stats.LatestValue)
		assert.InDelta(t, 40, *stats.LatestValue, 1e-9)
		assert.Equal(t, 2021, *stats.LatestYear)
		assert.InDelta(t, 10, *stats.MinValue, 1e-9)
		assert.InDelta(t, 40, *stats.MaxValue, 1e-9)
		assert.InDelta(t, 25, *stats.MeanValue, 1e-9)
		assert.InDelta(t, 25, *stats.MedianValue, 1e-9)
		require.NotNil(t, stats.Trend)
		assert.InDelta(t, 30, *stats.Trend, 1e-9)
		require.NotNil(t, stats.TrendPct)
		assert.InDelta(t, 300, *stats.TrendPct, 1e-9)
		assert.Equal(t, 4, stats.DataPoints)
	})

	t.Run("empty table", func(t *testing.T) {
		stats := uc.Statistics(domain.IndicatorTable{})
		assert.Nil(t, stats.LatestValue)
		assert.Zero(t, stats.DataPoints)
	})

	t.Run("single point has no std", func(t *testing.T) {
		stats := uc.Statistics(seriesTable(10))
		assert.Nil(t, stats.StdValue)
		assert.Equal(t, 1, stats.DataPoints)
	})

	t.Run("zero first value has no trend percent", func(t *testing.T) {
		stats := uc.Statistics(seriesTable(0, 5))
		require.NotNil(t, stats.Trend)
		assert.Nil(t, stats.TrendPct)
	})
}

func TestProcessorUseCase_GrowthRate(t *testing.T) {
	uc := NewProcessorUseCase(zap.NewNop())

	out := uc.GrowthRate(seriesTable(100, 110, 99))

	assert.Nil(t, out.Rows[0].GrowthRate)
	require.NotNil(t, out.Rows[1].GrowthRate)
	assert.InDelta(t, 10.0, *out.Rows[1].GrowthRate, 1e-9)
	require.NotNil(t, out.Rows[2].GrowthRate)
	assert.InDelta(t, -10.0, *out.Rows[2].GrowthRate, 1e-9)
}

func TestProcessorUseCase_MovingAverage(t *testing.T) {
	uc := NewProcessorUseCase(zap.NewNop())

	out := uc.MovingAverage(seriesTable(10, 20, 30, 40, 50), 3)

	// центрированное окно: края остаются пустыми
	assert.Nil(t, out.Rows[0].MovingAvg)
	assert.Nil(t, out.Rows[4].MovingAvg)
	require.NotNil(t, out.Rows[1].MovingAvg)
	assert.InDelta(t, 20, *out.Rows[1].MovingAvg, 1e-9)
	require.NotNil(t, out.Rows[2].MovingAvg)
	assert.InDelta(t, 30, *out.Rows[2].MovingAvg, 1e-9)

	t.Run("genders are averaged independently", func(t *testing.T) {
		table := seriesTable(10, 20, 30)
		table.Rows = append(table.Rows,
			domain.TableRow{Year: 2018, Gender: domain.GenderMale, Value: 100},
			domain.TableRow{Year: 2019, Gender: domain.GenderMale, Value: 200},
			domain.TableRow{Year: 2020, Gender: domain.GenderMale, Value: 300},
		)

		out := uc.MovingAverage(table, 3)
		require.NotNil(t, out.Rows[1].MovingAvg)
		assert.InDelta(t, 20, *out.Rows[1].MovingAvg, 1e-9)
		require.NotNil(t, out.Rows[4].MovingAvg)
		assert.InDelta(t, 200, *out.Rows[4].MovingAvg, 1e-9)
	})
}

func TestProcessorUseCase_Normalize(t *testing.T) {
	uc := NewProcessorUseCase(zap.NewNop())

	t.Run("minmax", func(t *testing.T) {
		out, err := uc.Normalize(seriesTable(10, 20, 30), NormalizeMinMax)
		require.NoError(t, err)

		require.NotNil(t, out.Rows[0].Normalized)
		assert.InDelta(t, 0.0, *out.Rows[0].Normalized, 1e-9)
		assert.InDelta(t, 0.5, *out.Rows[1].Normalized, 1e-9)
		assert.InDelta(t, 1.0, *out.Rows[2].Normalized, 1e-9)
	})

	t.Run("zscore centers the series", func(t *testing.T) {
		out, err := uc.Normalize(seriesTable(10, 20, 30), NormalizeZScore)
		require.NoError(t, err)

		require.NotNil(t, out.Rows[1].Normalized)
		assert.InDelta(t, 0.0, *out.Rows[1].Normalized, 1e-9)
		assert.InDelta(t, -*out.Rows[2].Normalized, *out.Rows[0].Normalized, 1e-9)
	})

	t.Run("constant series is left alone", func(t *testing.T) {
		out, err := uc.Normalize(seriesTable(5, 5, 5), NormalizeMinMax)
		require.NoError(t, err)
		assert.Nil(t, out.Rows[0].Normalized)
	})

	t.Run("unknown method errors", func(t *testing.T) {
		_, err := uc.Normalize(seriesTable(1, 2), "log")
		require.Error(t, err)
	})
}

func TestProcessorUseCase_DetectOutliers(t *testing.T) {
	uc := NewProcessorUseCase(zap.NewNop())

	t.Run("iqr flags the spike", func(t *testing.T) {
		out, err := uc.DetectOutliers(seriesTable(10, 11, 12, 11, 10, 11, 100), OutlierIQR)
		require.NoError(t, err)

		flagged := 0
		for _, row := range out.Rows {
			if row.IsOutlier {
				flagged++
				assert.InDelta(t, 100, row.Value, 1e-9)
			}
		}
		assert.Equal(t, 1, flagged)
	})

	t.Run("short series is not flagged by iqr", func(t *testing.T) {
		out, err := uc.DetectOutliers(seriesTable(1, 100, 2), OutlierIQR)
		require.NoError(t, err)
		for _, row := range out.Rows {
			assert.False(t, row.IsOutlier)
		}
	})

	t.Run("unknown method errors", func(t *testing.T) {
		_, err := uc.DetectOutliers(seriesTable(1, 2), "mad")
		require.Error(t, err)
	})
}

func TestProcessorUseCase_CompareIndicators(t *testing.T) {
	uc := NewProcessorUseCase(zap.NewNop())

	tables := map[int]domain.IndicatorTable{
		322: seriesTable(1, 2),
		186: seriesTable(3),
	}

	rows := uc.CompareIndicators(tables)
	require.Len(t, rows, 3)

	// сортировка по показателю, затем по году
	assert.Equal(t, 186, rows[0].IndicatorID)
	assert.Equal(t, 322, rows[1].IndicatorID)
	assert.Equal(t, 2018, rows[1].Year)
	assert.Equal(t, 2019, rows[2].Year)
}

func TestProcessorUseCase_AggregateByPeriod(t *testing.T) {
	uc := NewProcessorUseCase(zap.NewNop())

	t.Run("three year buckets", func(t *testing.T) {
		aggregates, err := uc.AggregateByPeriod(seriesTable(10, 20, 30, 40, 50, 60), "3year")
		require.NoError(t, err)

		require.Len(t, aggregates, 2)
		assert.Equal(t, "2018-2020", aggregates[0].Period)
		assert.InDelta(t, 20, aggregates[0].MeanValue, 1e-9)
		assert.Equal(t, 3, aggregates[0].Years)
		assert.Equal(t, "2021-2023", aggregates[1].Period)
		assert.InDelta(t, 50, aggregates[1].MeanValue, 1e-9)
	})

	t.Run("yearly keeps every year", func(t *testing.T) {
		aggregates, err := uc.AggregateByPeriod(seriesTable(10, 20), "yearly")
		require.NoError(t, err)
		require.Len(t, aggregates, 2)
		assert.Equal(t, "2018", aggregates[0].Period)
	})

	t.Run("unknown period errors", func(t *testing.T) {
		_, err := uc.AggregateByPeriod(seriesTable(10), "decade")
		require.Error(t, err)
	})

	t.Run("empty table", func(t *testing.T) {
		aggregates, err := uc.AggregateByPeriod(domain.IndicatorTable{}, "yearly")
		require.NoError(t, err)
		assert.Empty(t, aggregates)
	})
}
