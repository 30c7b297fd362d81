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

package ipfs

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// PublicGateways are probed to confirm pinned content has propagated.
var PublicGateways = []string{
	"https://ipfs.io",
	"https://gateway.pinata.cloud",
	"https://cloudflare-ipfs.com",
	"https://dweb.link",
}

const gatewayTimeout = 10 * time.Second

// GatewayResult reports one gateway's answer for a CID.
type GatewayResult struct {
	Gateway   string
	URL       string
	Reachable bool
	Err       error
}

// VerifyGateways probes each public gateway for the CID in parallel. The
// check is best-effort: propagation lag is normal and unreachable gateways
// are reported, never fatal.
func (c *Client) VerifyGateways(ctx context.Context, cid string) []GatewayResult {
	results := make([]GatewayResult, len(PublicGateways))
	var g errgroup.Group
	for i, gw := range PublicGateways {
		i, gw := i, gw
		g.Go(func() error {
			url := gw + "/ipfs/" + cid
			results[i] = GatewayResult{Gateway: gw, URL: url}

			probeCtx, cancel := context.WithTimeout(ctx, gatewayTimeout)
			defer cancel()
			req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, url, nil)
			if err != nil {
				results[i].Err = err
				return nil
			}
			resp, err := c.http.Do(req)
			if err != nil {
				results[i].Err = err
				return nil
			}
			resp.Body.Close()
			results[i].Reachable = resp.StatusCode == http.StatusOK
			return nil
		})
	}
	g.Wait()
	for _, r := range results {
		if r.Reachable {
			c.log.Debug("Gateway confirmed pin", "gateway", r.Gateway, "cid", cid)
		}
	}
	return results
}
