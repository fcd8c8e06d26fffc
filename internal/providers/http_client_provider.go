package providers

import (
	"github.com/RobinLinde/MapComplete-MQTT/internal/structures"
	"net"
	"net/http"
	"time"
)

const UserAgent = "MapComplete-MQTT (+https://github.com/RobinLinde/MapComplete-MQTT)"

// NewHttpClientProvider returns the client shared by the changeset fetch and
// theme/icon downloads. Every request is bounded by upstream.timeout.
func NewHttpClientProvider(conf *structures.Config) *http.Client {
	return &http.Client{
		Timeout: conf.Upstream.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
	}
}
