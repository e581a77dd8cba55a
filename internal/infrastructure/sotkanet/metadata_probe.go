package sotkanet

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sotkanet-dashboard/internal/domain"
)

// Известные заголовки показателей - последний резерв, когда ни эндпоинт
// метаданных, ни проба данных заголовка не дают
var knownTitles = map[int]domain.LocalizedText{
	186:  {FI: "Yleinen kuolleisuus", SV: "Allmän dödlighet", EN: "General mortality"},
	322:  {FI: "Liikunnan harrastaminen vapaa-ajalla", SV: "Motion på fritiden", EN: "Physical activity in leisure time"},
	5527: {FI: "Kaatumisiin ja putoamisiin liittyvät hoitojaksot 65 vuotta täyttäneillä", SV: "Vårdperioder relaterade till fall", EN: "Fall-related hospital periods"},
	5529: {FI: "Päivittäin tupakoivat", SV: "Dagliga rökare", EN: "Daily smokers"},
	4559: {FI: "Alkoholijuomien myynti asukasta kohti 100 %:n alkoholina", SV: "Försäljning av alkoholdrycker", EN: "Alcohol sales per capita"},
	4461: {FI: "Mielenterveyden ja käyttäytymisen häiriöiden vuoksi työkyvyttömyyseläkettä saavat", SV: "Sjukpension för psykiska störningar", EN: "Disability pension for mental disorders"},
}

// probeMetadata собирает минимальные метаданные из однолетней пробы
// эндпоинта данных. Best-effort: заголовок берётся из известного списка,
// единица измерения - эвристикой по тексту заголовка.
func (c *client) probeMetadata(ctx context.Context, indicatorID int) (*domain.IndicatorMetadata, error) {
	params := url.Values{}
	params.Set("indicator", strconv.Itoa(indicatorID))
	params.Set("years", strconv.Itoa(time.Now().Year()-1))
	params.Set("genders", string(domain.GenderTotal))

	var points []domain.DataPoint
	if err := c.getJSON(ctx, c.baseURL+"/json?"+params.Encode(), &points); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("no data available for indicator %d", indicatorID)
	}

	title, ok := knownTitles[indicatorID]
	if !ok {
		title = domain.LocalizedText{FI: fmt.Sprintf("Indicator %d", indicatorID)}
	}

	meta := &domain.IndicatorMetadata{
		ID:    indicatorID,
		Title: title,
		Organization: domain.Organization{
			Title: domain.LocalizedText{FI: "Unknown"},
		},
		Unit:        extractUnit(title.FI),
		Decimals:    1,
		DataUpdated: time.Now().Format("2006-01-02"),
	}

	c.logger.Info("Fetched metadata via data endpoint",
		zap.Int("indicator", indicatorID),
		zap.String("title", title.FI))

	return meta, nil
}

// extractUnit выводит единицу измерения из текста заголовка
func extractUnit(title string) string {
	switch {
	case strings.Contains(title, "/ 100 000"):
		return "/ 100 000"
	case strings.Contains(title, "/ 10 000"):
		return "/ 10 000"
	case strings.Contains(title, "/ 1 000"), strings.Contains(title, "/ 1000"):
		return "/ 1 000"
	case strings.Contains(title, "100 %:n alkoholina"):
		return "litraa / asukas"
	case strings.Contains(title, "%"):
		return "%"
	}
	return ""
}
