package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Gender - пол для стратификации показателя
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderTotal  Gender = "total"
)

// AllGenders возвращает все поддерживаемые полы в каноническом порядке
func AllGenders() []Gender {
	return []Gender{GenderMale, GenderFemale, GenderTotal}
}

// IsValid проверяет, что значение пола известно API
func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderTotal:
		return true
	}
	return false
}

// IndicatorQuery - запрос данных одного показателя. Неизменяемый после
// создания; одновременно служит ключом кеша (после канонизации).
type IndicatorQuery struct {
	IndicatorID int      `json:"indicator_id"`
	RegionID    int      `json:"region_id"`
	Years       []int    `json:"years"`
	Genders     []Gender `json:"genders"`
}

// CanonicalKey возвращает детерминированный ключ запроса. Порядок годов и
// полов на ключ не влияет.
func (q IndicatorQuery) CanonicalKey() string {
	years := make([]int, len(q.Years))
	copy(years, q.Years)
	sort.Ints(years)

	genders := make([]string, len(q.Genders))
	for i, g := range q.Genders {
		genders[i] = string(g)
	}
	sort.Strings(genders)

	yearParts := make([]string, len(years))
	for i, y := range years {
		yearParts[i] = fmt.Sprintf("%d", y)
	}

	canonical := fmt.Sprintf("indicator=%d|region=%d|years=%s|genders=%s",
		q.IndicatorID,
		q.RegionID,
		strings.Join(yearParts, ","),
		strings.Join(genders, ","),
	)

	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// DataPoint - одна точка временного ряда из Sotkanet API.
// Отсутствующие числовые поля остаются nil и исключаются из статистики,
// они никогда не приводятся к нулю.
type DataPoint struct {
	IndicatorID int      `json:"indicator"`
	RegionID    int      `json:"region"`
	Year        int      `json:"year"`
	Gender      Gender   `json:"gender"`
	Value       *float64 `json:"value,omitempty"`
	AbsValue    *float64 `json:"absValue,omitempty"`
}

// UnmarshalJSON терпимо разбирает строку точки: числовые поля API
// изредка приходят строками. Неразбираемое значение остаётся
// нулевым/nil, строка отбрасывается позже при сборке таблицы.
func (p *DataPoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		Indicator interface{} `json:"indicator"`
		Region    interface{} `json:"region"`
		Year      interface{} `json:"year"`
		Gender    string      `json:"gender"`
		Value     interface{} `json:"value"`
		AbsValue  interface{} `json:"absValue"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.IndicatorID = coerceInt(raw.Indicator)
	p.RegionID = coerceInt(raw.Region)
	p.Year = coerceInt(raw.Year)
	p.Gender = Gender(raw.Gender)
	p.Value = coerceFloat(raw.Value)
	p.AbsValue = coerceFloat(raw.AbsValue)
	return nil
}

func coerceInt(v interface{}) int {
	if f := coerceFloat(v); f != nil {
		return int(*f)
	}
	return 0
}

func coerceFloat(v interface{}) *float64 {
	switch val := v.(type) {
	case float64:
		return &val
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}

// Region - административная область из справочника API
type Region struct {
	ID       int           `json:"id"`
	Code     string        `json:"code,omitempty"`
	Category string        `json:"category,omitempty"`
	Title    LocalizedText `json:"title"`
}
