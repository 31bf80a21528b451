package httpclient

import (
	"net"
	"net/http"
	"time"
)

// Controller embeds an http.Client and uses it internally.
type Controller struct {
	*http.Client
}

// New builds the shared HTTP client used for engine calls and webhook
// deliveries. Dial, response-header and total timeouts are bounded so no
// worker can hang on a stuck backend.
func New() Controller {
	client := &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: time.Second * 3,
			}).DialContext,
			MaxIdleConnsPerHost:   50,
			ResponseHeaderTimeout: time.Second * 10,
		},
		Timeout: 120 * time.Second,
	}
	return Controller{Client: client}
}
