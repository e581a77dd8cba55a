package metadata

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sotkanet-dashboard/internal/usecase"
	"github.com/sotkanet-dashboard/internal/worker"
)

// RefreshWorker периодически поддерживает снимок метаданных в
// актуальном состоянии. Сам решает, нужно ли обновление: устаревший
// и отсутствующий снимок обновляются, свежий остаётся как есть.
type RefreshWorker struct {
	*worker.BaseWorker
	metadataUC *usecase.MetadataUseCase
	interval   time.Duration
}

// NewRefreshWorker создает новый RefreshWorker
func NewRefreshWorker(
	metadataUC *usecase.MetadataUseCase,
	interval time.Duration,
	logger *zap.Logger,
) *RefreshWorker {
	return &RefreshWorker{
		BaseWorker: worker.NewBaseWorker("metadata-refresher", logger),
		metadataUC: metadataUC,
		interval:   interval,
	}
}

// Start запускает цикл обновления. Первая проверка выполняется сразу,
// дальше по тикеру до остановки воркера или отмены контекста.
func (w *RefreshWorker) Start(ctx context.Context) error {
	w.Logger().Info("Metadata refresh worker started",
		zap.Duration("interval", w.interval))

	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Logger().Info("Metadata refresh worker context cancelled")
			return nil
		case <-w.StopChan():
			w.Logger().Info("Metadata refresh worker stopped")
			return nil
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *RefreshWorker) refresh(ctx context.Context) {
	snapshot, err := w.metadataUC.Ensure(ctx)
	if err != nil {
		w.Logger().Error("Periodic metadata refresh failed", zap.Error(err))
		return
	}
	w.Logger().Debug("Metadata snapshot verified",
		zap.Int("indicators", snapshot.IndicatorCount))
}
