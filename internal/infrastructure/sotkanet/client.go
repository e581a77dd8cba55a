package sotkanet

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sotkanet-dashboard/internal/config"
	"github.com/sotkanet-dashboard/internal/domain"
	"github.com/sotkanet-dashboard/internal/domain/repository"
	apierrors "github.com/sotkanet-dashboard/internal/pkg/errors"
)

// Пауза между под-запросами при разбиении батча после HTTP 403.
// Это намеренный троттлинг под недокументированные лимиты Sotkanet,
// а не случайный sleep.
const fallbackPause = 100 * time.Millisecond

// errForbidden - сигнал разбить батч на под-запросы по (год, пол)
var errForbidden = stderrors.New("batch request forbidden")

type client struct {
	httpClient *http.Client
	baseURL    string
	retryCount int
	retryDelay time.Duration
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient создает новый клиент Sotkanet REST API
func NewClient(cfg *config.SotkanetConfig, logger *zap.Logger) repository.SotkanetRepository {
	retryCount := cfg.RetryCount
	if retryCount < 1 {
		retryCount = 1
	}

	return &client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		retryCount: retryCount,
		retryDelay: cfg.RetryDelay,
		limiter:    rate.NewLimiter(rate.Every(fallbackPause), 1),
		logger:     logger,
	}
}

// FetchData возвращает точки данных показателя. Годы и полы передаются
// повторяющимися query-ключами (API не принимает списки через запятую).
// Ответ фильтруется по региону запроса: API иногда возвращает чужие регионы.
func (c *client) FetchData(ctx context.Context, query domain.IndicatorQuery) ([]domain.DataPoint, error) {
	rawURL := c.dataURL(query)

	c.logger.Info("Fetching indicator data",
		zap.Int("indicator", query.IndicatorID),
		zap.Int("region", query.RegionID),
		zap.Ints("years", query.Years),
		zap.Int("genders", len(query.Genders)))

	var points []domain.DataPoint
	err := c.getJSON(ctx, rawURL, &points)
	if stderrors.Is(err, errForbidden) {
		c.logger.Warn("Batch request forbidden, splitting by year and gender",
			zap.Int("indicator", query.IndicatorID))
		return c.fetchDataSplit(ctx, query)
	}
	if err != nil {
		return nil, err
	}

	return filterRegion(points, query.RegionID), nil
}

// fetchDataSplit выполняет по одному запросу на каждую пару (год, пол)
// последовательно. Ошибка отдельного под-запроса логируется и
// пропускается, не срывая весь вызов.
func (c *client) fetchDataSplit(ctx context.Context, query domain.IndicatorQuery) ([]domain.DataPoint, error) {
	merged := make([]domain.DataPoint, 0)

	for _, year := range query.Years {
		for _, gender := range query.Genders {
			if err := c.limiter.Wait(ctx); err != nil {
				return merged, err
			}

			sub := domain.IndicatorQuery{
				IndicatorID: query.IndicatorID,
				RegionID:    query.RegionID,
				Years:       []int{year},
				Genders:     []domain.Gender{gender},
			}

			var points []domain.DataPoint
			if err := c.getJSON(ctx, c.dataURL(sub), &points); err != nil {
				c.logger.Warn("Sub-request failed, skipping",
					zap.Int("indicator", query.IndicatorID),
					zap.Int("year", year),
					zap.String("gender", string(gender)),
					zap.Error(err))
				continue
			}

			merged = append(merged, filterRegion(points, query.RegionID)...)
		}
	}

	return merged, nil
}

// FetchMetadata возвращает метаданные показателя. Если эндпоинт метаданных
// недоступен (403 или ошибка сервера), пробует вывести минимальные
// метаданные из однолетней пробы данных; такой ответ может быть неполным.
func (c *client) FetchMetadata(ctx context.Context, indicatorID int) (*domain.IndicatorMetadata, error) {
	rawURL := fmt.Sprintf("%s/indicators/%d", c.baseURL, indicatorID)

	c.logger.Info("Fetching metadata", zap.Int("indicator", indicatorID))

	var meta domain.IndicatorMetadata
	err := c.getJSON(ctx, rawURL, &meta)
	if err == nil {
		meta.ID = indicatorID
		return &meta, nil
	}

	if apierrors.IsNotFound(err) || apierrors.IsInvalidResponse(err) {
		return nil, err
	}

	c.logger.Warn("Metadata endpoint unavailable, probing data endpoint",
		zap.Int("indicator", indicatorID),
		zap.Error(err))

	probed, probeErr := c.probeMetadata(ctx, indicatorID)
	if probeErr != nil {
		return nil, exportForbidden(err, rawURL)
	}
	return probed, nil
}

// FetchRegions возвращает справочник регионов
func (c *client) FetchRegions(ctx context.Context) ([]domain.Region, error) {
	c.logger.Info("Fetching regions list")

	rawURL := c.baseURL + "/regions"
	var regions []domain.Region
	if err := c.getJSON(ctx, rawURL, &regions); err != nil {
		return nil, exportForbidden(err, rawURL)
	}
	return regions, nil
}

// Close освобождает пул соединений
func (c *client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// getJSON выполняет GET с повторами. Политика:
//   - таймаут, сетевая ошибка, 5xx: повтор через retryDelay;
//   - 429: дополнительное ожидание номер_попытки * 2s, повтор;
//   - 404, не-JSON тело: немедленная ошибка без повторов;
//   - 403: немедленный errForbidden - решение о разбиении принимает вызывающий.
func (c *client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	attempt := 0

	operation := func() error {
		attempt++

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		setBrowserHeaders(req)

		c.logger.Debug("Request",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.retryCount))

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if isTimeoutErr(err) {
				c.logger.Warn("Request timed out",
					zap.Int("attempt", attempt),
					zap.Int("max_attempts", c.retryCount))
				return &apierrors.TimeoutError{URL: rawURL, Attempts: attempt}
			}
			c.logger.Warn("Request failed", zap.Error(err))
			return &apierrors.ConnectionError{URL: rawURL, Err: err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			body, readErr := io.ReadAll(resp.Body)
			if readErr != nil {
				return &apierrors.ConnectionError{URL: rawURL, Err: readErr}
			}
			if jsonErr := json.Unmarshal(body, out); jsonErr != nil {
				return backoff.Permanent(&apierrors.InvalidResponseError{URL: rawURL, Err: jsonErr})
			}
			return nil

		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(&apierrors.NotFoundError{URL: rawURL})

		case resp.StatusCode == http.StatusForbidden:
			return backoff.Permanent(errForbidden)

		case resp.StatusCode == http.StatusTooManyRequests:
			wait := time.Duration(attempt) * 2 * time.Second
			c.logger.Warn("Rate limited, backing off",
				zap.Duration("wait", wait),
				zap.Int("attempt", attempt))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return backoff.Permanent(ctx.Err())
			}
			return &apierrors.HTTPError{StatusCode: resp.StatusCode, URL: rawURL}

		case resp.StatusCode >= 500:
			c.logger.Warn("Server error, retrying",
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt))
			return &apierrors.HTTPError{StatusCode: resp.StatusCode, URL: rawURL}

		default:
			return backoff.Permanent(&apierrors.HTTPError{StatusCode: resp.StatusCode, URL: rawURL})
		}
	}

	return backoff.Retry(
		operation,
		backoff.WithContext(
			backoff.WithMaxRetries(
				backoff.NewConstantBackOff(c.retryDelay),
				uint64(c.retryCount-1),
			),
			ctx,
		),
	)
}

func (c *client) dataURL(q domain.IndicatorQuery) string {
	params := url.Values{}
	params.Set("indicator", strconv.Itoa(q.IndicatorID))
	params.Set("regions", strconv.Itoa(q.RegionID))
	for _, year := range q.Years {
		params.Add("years", strconv.Itoa(year))
	}
	for _, gender := range q.Genders {
		params.Add("genders", string(gender))
	}
	return c.baseURL + "/json?" + params.Encode()
}

// setBrowserHeaders добавляет заголовки настоящего браузера. Sotkanet
// отвечает 403 на дефолтный фингерпринт HTTP-клиента, так что это
// функциональное требование, а не косметика.
func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "fi-FI,fi;q=0.9,en;q=0.8")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Referer", "https://sotkanet.fi/")
	req.Header.Set("Origin", "https://sotkanet.fi")
}

func isTimeoutErr(err error) bool {
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return stderrors.Is(err, context.DeadlineExceeded)
}

// exportForbidden переводит внутренний сигнал errForbidden в типовую
// HTTP-ошибку. Сигнал имеет смысл только внутри FetchData, где 403
// означает "разбей батч"; наружу клиент отдает обычный HTTPError(403).
func exportForbidden(err error, rawURL string) error {
	if stderrors.Is(err, errForbidden) {
		return &apierrors.HTTPError{StatusCode: http.StatusForbidden, URL: rawURL}
	}
	return err
}

func filterRegion(points []domain.DataPoint, regionID int) []domain.DataPoint {
	filtered := make([]domain.DataPoint, 0, len(points))
	for _, p := range points {
		if p.RegionID == regionID {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
