package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// adsbFiBaseURL is the open data endpoint of adsb.fi, see https://github.com/adsbfi/opendata
const adsbFiBaseURL = "https://opendata.adsb.fi/api/v2"

var (
	ErrNonOkResponse     = errors.New("non-OK response")
	ErrEmptyResponseBody = errors.New("empty response body")
	ErrNonJSONContent    = errors.New("non-JSON content type")
)

// RequestOptions determines the centre of the area which is polled.
type RequestOptions struct {
	Lat float64
	Lon float64
}

// FeedClient polls the live feed around a location and feeds the results into a track store.
type FeedClient struct {
	baseURL string
	options RequestOptions
	client  *http.Client
	logger  *slog.Logger
}

func NewFeedClient(options RequestOptions, logger *slog.Logger) *FeedClient {
	if logger == nil {
		logger = discardLogger()
	}

	return &FeedClient{
		baseURL: adsbFiBaseURL,
		options: options,
		client:  &http.Client{Timeout: AircraftUpdateInterval},
		logger:  logger.With(slog.String("component", "feed")),
	}
}

func (fc *FeedClient) civAircraftURL() string {
	return fmt.Sprintf("%s/lat/%.6f/lon/%.6f/dist/%d", fc.baseURL, fc.options.Lat, fc.options.Lon, FeedRadiusNM)
}

// RequestCivAircraft fetches all aircraft within the feed radius and normalizes them.
func (fc *FeedClient) RequestCivAircraft(ctx context.Context, now time.Time) ([]PositionUpdate, error) {
	body, requestErr := fc.sendRequest(ctx, fc.civAircraftURL())
	if requestErr != nil {
		return nil, fmt.Errorf("requestCivAircraft: error during request: %w", requestErr)
	}

	records, parseErr := ParseAircraftJSON(body)
	if parseErr != nil {
		return nil, fmt.Errorf("requestCivAircraft: %w", parseErr)
	}

	updates := make([]PositionUpdate, len(records))
	for i := range records {
		updates[i] = records[i].ToPositionUpdate(now)
	}

	return updates, nil
}

// Poll requests one batch of aircraft and applies it to the store. Rejected updates are logged
// and skipped, the rest of the batch is still applied.
func (fc *FeedClient) Poll(ctx context.Context, store *TrackStore) (int, error) {
	updates, err := fc.RequestCivAircraft(ctx, store.cfg.Now())
	if err != nil {
		return 0, err
	}

	applied := 0
	for i := range updates {
		if updateErr := store.Update(updates[i]); updateErr != nil {
			fc.logger.Debug("update rejected", slog.Any("error", updateErr))
			continue
		}
		applied++
	}

	return applied, nil
}

// Run polls on AircraftUpdateInterval until the context is cancelled. A failed poll is logged
// and retried on the next interval.
func (fc *FeedClient) Run(ctx context.Context, store *TrackStore) error {
	poll := func() {
		applied, err := fc.Poll(ctx, store)
		if err != nil {
			if ctx.Err() == nil {
				fc.logger.Error("polling feed failed", slog.Any("error", err))
			}
			return
		}
		fc.logger.Debug("feed polled", slog.Int("applied", applied))
	}

	// Run once in the beginning.
	poll()

	ticker := time.NewTicker(AircraftUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			poll()
		case <-ctx.Done():
			return nil
		}
	}
}

// sendRequest sends an HTTP GET request and returns a valid byte slice of the response body.
func (fc *FeedClient) sendRequest(ctx context.Context, url string) (body []byte, err error) {
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if reqErr != nil {
		return nil, fmt.Errorf("sendRequest: invalid request error: %s : %w", url, reqErr)
	}

	resp, respErr := fc.client.Do(req)
	if respErr != nil {
		return nil, fmt.Errorf("sendRequest: failed to send GET request: %s: %w", url, respErr)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("sendRequest: error while closing response body: %w", closeErr)
		}
	}()

	// Check if the request was successful (status code 200 OK)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sendRequest: %w %s", ErrNonOkResponse, resp.Status)
	}

	body, bodyErr := io.ReadAll(resp.Body)
	if bodyErr != nil {
		return nil, fmt.Errorf("sendRequest: failed to read response body: %w", bodyErr)
	}

	if len(body) == 0 {
		return nil, fmt.Errorf("sendRequest: %w", ErrEmptyResponseBody)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		return nil, fmt.Errorf("sendRequest: %w, %s", ErrNonJSONContent, contentType)
	}

	return body, nil
}
