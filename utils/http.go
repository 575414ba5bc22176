package utils

import (
	"net/http"
	"time"
)

// HTTPClient is the shared client for outbound calls (classifier).
var HTTPClient = &http.Client{
	Timeout: 15 * time.Second,
}
