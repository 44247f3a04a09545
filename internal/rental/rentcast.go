package rental

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	maxAttempts    = 3
	defaultBackoff = time.Second
)

// RentCast talks to the RentCast REST API. Requests carry the API key
// in the X-Api-Key header; 429 responses are retried with exponential
// backoff, any other error status fails the call immediately.
type RentCast struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *logrus.Logger

	// backoff is the first retry delay; it doubles per attempt.
	// Overridable so tests do not sleep for real.
	backoff time.Duration
}

func NewRentCast(baseURL, apiKey string, logger *logrus.Logger) *RentCast {
	return &RentCast{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 20 * time.Second},
		logger:  logger,
		backoff: defaultBackoff,
	}
}

func (r *RentCast) get(path string, params url.Values, out interface{}) error {
	endpoint := r.baseURL + path + "?" + params.Encode()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		req, err := http.NewRequest(http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("%w: building request: %v", ErrUpstream, err)
		}
		if r.apiKey != "" {
			req.Header.Set("X-Api-Key", r.apiKey)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := r.client.Do(req)
		if err != nil {
			r.logger.WithError(err).WithField("path", path).Error("RentCast request failed")
			return fmt.Errorf("%w: %v", ErrUpstream, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			delay := r.backoff << attempt
			r.logger.WithFields(logrus.Fields{
				"path":    path,
				"attempt": attempt + 1,
				"delay":   delay.String(),
			}).Warn("RentCast rate limited, backing off")
			time.Sleep(delay)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("%w: reading response: %v", ErrUpstream, err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			r.logger.WithFields(logrus.Fields{
				"path":   path,
				"status": resp.StatusCode,
			}).Error("RentCast returned error status")
			return fmt.Errorf("%w: unexpected status %d", ErrUpstream, resp.StatusCode)
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
		}
		return nil
	}

	return fmt.Errorf("%w: rate limited repeatedly", ErrUpstream)
}

func (r *RentCast) GetPropertyDetails(address string) (Record, error) {
	var record Record
	params := url.Values{"address": []string{address}}
	if err := r.get("/v1/properties", params, &record); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *RentCast) GetRentEstimate(address string) (Record, error) {
	var record Record
	params := url.Values{"address": []string{address}}
	if err := r.get("/v1/rents/estimate", params, &record); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *RentCast) GetRentComps(address string, limit int) ([]Record, error) {
	var records []Record
	params := url.Values{
		"address": []string{address},
		"limit":   []string{strconv.Itoa(limit)},
	}
	if err := r.get("/v1/rents/comps", params, &records); err != nil {
		return nil, err
	}
	return records, nil
}
