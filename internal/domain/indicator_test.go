package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndicatorQuery_CanonicalKey(t *testing.T) {
	t.Run("order of years and genders does not matter", func(t *testing.T) {
		a := IndicatorQuery{
			IndicatorID: 186,
			RegionID:    629,
			Years:       []int{2020, 2018, 2019},
			Genders:     []Gender{GenderTotal, GenderMale, GenderFemale},
		}
		b := IndicatorQuery{
			IndicatorID: 186,
			RegionID:    629,
			Years:       []int{2018, 2019, 2020},
			Genders:     []Gender{GenderFemale, GenderMale, GenderTotal},
		}

		assert.Equal(t, a.CanonicalKey(), b.CanonicalKey())
	})

	t.Run("different parameters produce different keys", func(t *testing.T) {
		base := IndicatorQuery{IndicatorID: 186, RegionID: 629, Years: []int{2020}, Genders: []Gender{GenderTotal}}

		otherIndicator := base
		otherIndicator.IndicatorID = 322
		assert.NotEqual(t, base.CanonicalKey(), otherIndicator.CanonicalKey())

		otherRegion := base
		otherRegion.RegionID = 700
		assert.NotEqual(t, base.CanonicalKey(), otherRegion.CanonicalKey())

		otherYears := base
		otherYears.Years = []int{2021}
		assert.NotEqual(t, base.CanonicalKey(), otherYears.CanonicalKey())
	})

	t.Run("does not mutate the query", func(t *testing.T) {
		q := IndicatorQuery{
			IndicatorID: 186,
			RegionID:    629,
			Years:       []int{2020, 2018},
			Genders:     []Gender{GenderTotal, GenderMale},
		}
		q.CanonicalKey()

		assert.Equal(t, []int{2020, 2018}, q.Years)
		assert.Equal(t, []Gender{GenderTotal, GenderMale}, q.Genders)
	})
}

func TestDataPoint_UnmarshalJSON(t *testing.T) {
	t.Run("numeric fields", func(t *testing.T) {
		raw := `{"indicator":186,"region":629,"year":2020,"gender":"total","value":12.5,"absValue":1500}`

		var p DataPoint
		require.NoError(t, json.Unmarshal([]byte(raw), &p))

		assert.Equal(t, 186, p.IndicatorID)
		assert.Equal(t, 629, p.RegionID)
		assert.Equal(t, 2020, p.Year)
		assert.Equal(t, GenderTotal, p.Gender)
		require.NotNil(t, p.Value)
		assert.InDelta(t, 12.5, *p.Value, 1e-9)
		require.NotNil(t, p.AbsValue)
		assert.InDelta(t, 1500, *p.AbsValue, 1e-9)
	})

	t.Run("string-typed numbers from the API", func(t *testing.T) {
		raw := `{"indicator":"186","region":"629","year":"2020","gender":"male","value":"7.25"}`

		var p DataPoint
		require.NoError(t, json.Unmarshal([]byte(raw), &p))

		assert.Equal(t, 186, p.IndicatorID)
		assert.Equal(t, 2020, p.Year)
		require.NotNil(t, p.Value)
		assert.InDelta(t, 7.25, *p.Value, 1e-9)
	})

	t.Run("missing value stays nil", func(t *testing.T) {
		raw := `{"indicator":186,"region":629,"year":2020,"gender":"total"}`

		var p DataPoint
		require.NoError(t, json.Unmarshal([]byte(raw), &p))

		assert.Nil(t, p.Value)
		assert.Nil(t, p.AbsValue)
	})

	t.Run("unparseable value stays nil instead of failing", func(t *testing.T) {
		raw := `{"indicator":186,"region":629,"year":2020,"gender":"total","value":"n/a"}`

		var p DataPoint
		require.NoError(t, json.Unmarshal([]byte(raw), &p))
		assert.Nil(t, p.Value)
	})
}

func TestYearRange_Clip(t *testing.T) {
	r := YearRange{Start: 2015, End: 2021}

	assert.Equal(t, []int{2018, 2019, 2021}, r.Clip([]int{2018, 2019, 2021, 2022, 2023}))
	assert.Empty(t, r.Clip([]int{2022, 2023}))
	assert.Equal(t, []int{2020, 2015}, r.Clip([]int{2020, 2015, 2012}))
}
