// Copyright 2018 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package ipfs pins content through the Pinata API with bounded retries.
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
)

const (
	defaultBaseURL = "https://api.pinata.cloud"

	// Each pin is attempted this many times before giving up.
	pinAttempts = 3

	// attemptTimeout bounds a single upload attempt.
	attemptTimeout = 30 * time.Second
)

var (
	ErrMissingJWT = errors.New("ipfs: pinata JWT not configured")
	ErrBadCID     = errors.New("ipfs: response carried an invalid CID")
)

// DelayFunc returns the pause before retrying after the given 1-based
// failed attempt.
type DelayFunc func(attempt int) time.Duration

// Backoff builds a doubling delay schedule: base after the first failure,
// 2*base after the second, and so on.
func Backoff(base time.Duration) DelayFunc {
	return func(attempt int) time.Duration {
		return base << (attempt - 1)
	}
}

// pinBackoff is the pin schedule: 2s after the first failure, 4s after the
// second.
var pinBackoff = Backoff(2 * time.Second)

// Client talks to the Pinata pinning API.
type Client struct {
	http    *http.Client
	baseURL string
	jwt     string
	log     log.Logger

	// sleep is swapped out by tests to avoid real backoff waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient builds a Pinata client authenticated with a JWT. A nil http
// client falls back to http.DefaultClient.
func NewClient(jwt string, hc *http.Client) (*Client, error) {
	if jwt == "" {
		return nil, ErrMissingJWT
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		http:    hc,
		baseURL: defaultBaseURL,
		jwt:     jwt,
		log:     log.New("module", "ipfs"),
		sleep:   sleepCtx,
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// pinResponse is the subset of the Pinata response we need.
type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

// validCID accepts CIDv0 ("Qm...") and base32 CIDv1 ("bafy...") hashes.
func validCID(cid string) bool {
	return strings.HasPrefix(cid, "Qm") || strings.HasPrefix(cid, "bafy")
}

// PinFile uploads raw bytes as a file pin and returns the CID. Transient
// failures are retried with doubling backoff.
func (c *Client) PinFile(ctx context.Context, name string, data []byte) (string, error) {
	return c.withRetry(ctx, "file", pinAttempts, pinBackoff, func(ctx context.Context) (string, error) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, err := mw.CreateFormFile("file", name)
		if err != nil {
			return "", err
		}
		if _, err := fw.Write(data); err != nil {
			return "", err
		}
		meta, _ := json.Marshal(map[string]string{"name": name})
		if err := mw.WriteField("pinataMetadata", string(meta)); err != nil {
			return "", err
		}
		if err := mw.Close(); err != nil {
			return "", err
		}
		return c.post(ctx, "/pinning/pinFileToIPFS", mw.FormDataContentType(), &body)
	})
}

// PinJSON pins a JSON document and returns the CID.
func (c *Client) PinJSON(ctx context.Context, v interface{}) (string, error) {
	return c.withRetry(ctx, "json", pinAttempts, pinBackoff, func(ctx context.Context) (string, error) {
		payload, err := json.Marshal(map[string]interface{}{
			"pinataContent":  v,
			"pinataMetadata": map[string]string{"name": "mojo-metadata.json"},
		})
		if err != nil {
			return "", err
		}
		return c.post(ctx, "/pinning/pinJSONToIPFS", "application/json", bytes.NewReader(payload))
	})
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.jwt)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ipfs: pinata status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	var out pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ipfs: decode response: %w", err)
	}
	if !validCID(out.IpfsHash) {
		return "", fmt.Errorf("%w: %q", ErrBadCID, out.IpfsHash)
	}
	return out.IpfsHash, nil
}

// withRetry runs op up to attempts times, each under its own timeout,
// pausing delay(attempt) between attempts. A cancelled context stops the
// retries.
func (c *Client) withRetry(ctx context.Context, kind string, attempts int, delay DelayFunc, op func(context.Context) (string, error)) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		cid, err := op(attemptCtx)
		cancel()
		if err == nil {
			c.log.Info("Pinned to IPFS", "kind", kind, "cid", cid, "attempt", attempt)
			return cid, nil
		}
		lastErr = err
		c.log.Warn("Pin attempt failed", "kind", kind, "attempt", attempt, "err", err)
		if attempt == attempts {
			break
		}
		if err := c.sleep(ctx, delay(attempt)); err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("ipfs: %s pin failed after %d attempts: %w", kind, attempts, lastErr)
}
