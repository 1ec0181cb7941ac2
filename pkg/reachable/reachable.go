/*
 *     Copyright 2024 The Netanomaly Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package reachable

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"
)

const (
	// DefaultNetwork is the default network type.
	DefaultNetwork = "tcp"

	// DefaultTimeout is the default dial timeout.
	DefaultTimeout = 1 * time.Second
)

// defaultPorts maps a url scheme to the port used when the url has none.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

type Reachable interface {
	// Check that the host of the url accepts connections.
	Check(context.Context) error
}

type reachable struct {
	url     string
	network string
	timeout time.Duration
}

type Config struct {
	URL     string
	Network string
	Timeout time.Duration
}

// New returns a new Reachable interface.
func New(r *Config) Reachable {
	network := DefaultNetwork
	if r.Network != "" {
		network = r.Network
	}

	timeout := DefaultTimeout
	if r.Timeout != 0 {
		timeout = r.Timeout
	}

	return &reachable{
		url:     r.URL,
		network: network,
		timeout: timeout,
	}
}

// Check that the host of the url accepts connections.
func (r *reachable) Check(ctx context.Context) error {
	address, err := address(r.url)
	if err != nil {
		return err
	}

	dialer := &net.Dialer{Timeout: r.timeout}
	conn, err := dialer.DialContext(ctx, r.network, address)
	if err != nil {
		return err
	}
	conn.Close()

	return nil
}

// address returns the host:port dialed for rawURL.
func address(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	if u.Hostname() == "" {
		return "", fmt.Errorf("url %q has no host", rawURL)
	}

	port := u.Port()
	if port == "" {
		p, ok := defaultPorts[u.Scheme]
		if !ok {
			return "", fmt.Errorf("url %q has no port", rawURL)
		}
		port = p
	}

	return net.JoinHostPort(u.Hostname(), port), nil
}
