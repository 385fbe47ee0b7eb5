package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tilde-lab/mpds-client-go/pkg/cache"
	"github.com/tilde-lab/mpds-client-go/pkg/phases"
)

// page is the decoded outcome of one successful fetch. Count and
// NPages are the server-declared totals for the whole batch; they are
// authoritative and must not change across the batch's pages.
type page struct {
	Records []map[string]any
	Count   int
	NPages  int
}

// facetResponse mirrors the facet endpoint's JSON body.
type facetResponse struct {
	Out    []map[string]any `json:"out"`
	Count  int              `json:"count"`
	NPages int              `json:"npages"`
	Error  string           `json:"error"`
}

// fetchPage issues one query+phases+page request and interprets the
// response. Every non-success outcome comes back as an *APIError; the
// caller never sees a partial page.
func (c *Client) fetchPage(ctx context.Context, query Query, phaseBatch []int, pageIndex, pageSize int) (*page, error) {
	queryJSON, err := json.Marshal(query)
	if err != nil {
		return nil, &APIError{
			Kind:    ErrorKindConfig,
			Message: "serialize query: " + err.Error(),
			Err:     err,
		}
	}

	phasesParam := phases.Join(phaseBatch)

	params := url.Values{}
	params.Set("q", string(queryJSON))
	params.Set("phases", phasesParam)
	params.Set("page", strconv.Itoa(pageIndex))
	params.Set("pagesize", strconv.Itoa(pageSize))
	requestURL := c.config.Endpoint + "?" + params.Encode()

	// Diagnostic side channel: echo the equivalent request.
	if c.config.Debug {
		c.logger.Debug().Msg("GET " + requestURL)
	}

	cacheKey := cache.Key{
		Query:    string(queryJSON),
		Phases:   phasesParam,
		Page:     pageIndex,
		PageSize: pageSize,
	}

	body, cached := c.cachedBody(ctx, cacheKey)
	if !cached {
		body, err = c.issueRequest(ctx, requestURL)
		if err != nil {
			return nil, err
		}
	}

	var content facetResponse
	if err := json.Unmarshal(body, &content); err != nil {
		mpdsErrorsTotal.WithLabelValues(string(ErrorKindDecode)).Inc()
		return nil, &APIError{
			Kind:    ErrorKindDecode,
			Message: "unreadable data obtained",
			Err:     err,
		}
	}

	if content.Error != "" {
		mpdsErrorsTotal.WithLabelValues(string(ErrorKindUpstream)).Inc()
		return nil, &APIError{
			Kind:    ErrorKindUpstream,
			Message: content.Error,
		}
	}

	if len(content.Out) == 0 {
		mpdsErrorsTotal.WithLabelValues(string(ErrorKindEmpty)).Inc()
		return nil, &APIError{
			Kind:    ErrorKindEmpty,
			Code:    http.StatusNoContent,
			Message: "no hits",
		}
	}

	if !cached && c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, body); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache page response")
		}
	}

	mpdsPagesFetchedTotal.Inc()

	return &page{
		Records: content.Out,
		Count:   content.Count,
		NPages:  content.NPages,
	}, nil
}

// cachedBody consults the optional page cache. A miss or cache failure
// just sends the request to the network.
func (c *Client) cachedBody(ctx context.Context, key cache.Key) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}

	body, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Msg("Cache get error")
		}
		return nil, false
	}

	c.logger.Debug().Str("key", key.String()).Msg("Page cache hit")
	return body, true
}

// issueRequest performs the HTTP round trip and returns the body of a
// 200 response. Transport failures and non-success statuses map to the
// transport error kind, with the HTTP status as the code where one
// exists.
func (c *Client) issueRequest(ctx context.Context, requestURL string) ([]byte, error) {
	start := time.Now()
	defer func() {
		mpdsRequestDuration.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, &APIError{
			Kind:    ErrorKindConfig,
			Message: "create request: " + err.Error(),
			Err:     err,
		}
	}
	req.Header.Set("Key", c.config.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		mpdsErrorsTotal.WithLabelValues(string(ErrorKindTransport)).Inc()
		mpdsRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, &APIError{
			Kind:    ErrorKindTransport,
			Message: err.Error(),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		mpdsErrorsTotal.WithLabelValues(string(ErrorKindTransport)).Inc()
		mpdsRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, &APIError{
			Kind:    ErrorKindTransport,
			Message: "read response body: " + err.Error(),
			Err:     err,
		}
	}

	mpdsRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		mpdsErrorsTotal.WithLabelValues(string(ErrorKindTransport)).Inc()

		message := strings.TrimSpace(string(body))
		if message == "" {
			message = resp.Status
		}

		c.logger.Warn().
			Int("status", resp.StatusCode).
			Msg("MPDS request error")

		return nil, &APIError{
			Kind:    ErrorKindTransport,
			Code:    resp.StatusCode,
			Message: message,
		}
	}

	return body, nil
}
