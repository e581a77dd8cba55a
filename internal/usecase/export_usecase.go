package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/sotkanet-dashboard/internal/domain"
)

// ExportUseCase собирает таблицы показателей в один CSV для выгрузки
// из дашборда
type ExportUseCase struct {
	fetcher   TableFetcher
	processor *ProcessorUseCase
	metadata  MetadataProvider
	logger    *zap.Logger
}

// NewExportUseCase создает новый ExportUseCase
func NewExportUseCase(
	fetcher TableFetcher,
	processor *ProcessorUseCase,
	metadata MetadataProvider,
	logger *zap.Logger,
) *ExportUseCase {
	return &ExportUseCase{
		fetcher:   fetcher,
		processor: processor,
		metadata:  metadata,
		logger:    logger,
	}
}

var csvHeader = []string{
	"indicator_id",
	"indicator_name",
	"year",
	"gender",
	"value",
	"abs_value",
	"growth_rate",
	"moving_avg",
}

// ExportCSV выгружает данные перечисленных показателей одним CSV.
// Производные колонки рассчитываются перед записью; показатели без
// данных просто отсутствуют в файле.
func (uc *ExportUseCase) ExportCSV(
	ctx context.Context,
	indicatorIDs []int,
	regionID int,
	years []int,
	genders []domain.Gender,
	lang string,
) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	ids := append([]int(nil), indicatorIDs...)
	sort.Ints(ids)

	rows := 0
	for _, id := range ids {
		table := uc.fetcher.FetchIndicatorData(ctx, id, regionID, years, genders)
		if table.Empty() {
			uc.logger.Warn("No data to export for indicator", zap.Int("indicator", id))
			continue
		}

		table = uc.processor.GrowthRate(table)
		table = uc.processor.MovingAverage(table, defaultMovingWindow)

		name := fmt.Sprintf("Indicator %d", id)
		if meta, ok := uc.metadata.Indicator(ctx, id); ok {
			if title := meta.Title.Get(lang); title != "" {
				name = title
			}
		}

		for _, row := range table.Rows {
			record := []string{
				strconv.Itoa(id),
				name,
				strconv.Itoa(row.Year),
				string(row.Gender),
				formatFloat(&row.Value),
				formatFloat(row.AbsValue),
				formatFloat(row.GrowthRate),
				formatFloat(row.MovingAvg),
			}
			if err := w.Write(record); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
			rows++
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	uc.logger.Info("Exported CSV",
		zap.Int("indicators", len(ids)),
		zap.Int("rows", rows))

	return buf.Bytes(), nil
}

// formatFloat печатает число с двумя знаками; nil остаётся пустой
// ячейкой
func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
