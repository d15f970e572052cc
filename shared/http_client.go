package shared

import (
	"net/http"
	"sync"
	"time"
)

// HTTPClientFactory creates and manages HTTP clients with optimized connection pooling
type HTTPClientFactory struct {
	transport *http.Transport
	mu        sync.RWMutex
	clients   map[string]*http.Client
}

// HTTPClientConfig holds configuration for HTTP clients
type HTTPClientConfig struct {
	Timeout             time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	DisableKeepAlives   bool
}

// DefaultHTTPClientConfig returns sensible defaults for HTTP client configuration
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:             30 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DisableKeepAlives:   false,
	}
}

// NewHTTPClientFactory creates a new HTTP client factory with shared transport
func NewHTTPClientFactory(config HTTPClientConfig) *HTTPClientFactory {
	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		DisableKeepAlives:   config.DisableKeepAlives,
	}

	return &HTTPClientFactory{
		transport: transport,
		clients:   make(map[string]*http.Client),
	}
}

// GetClient returns a client for the given purpose, creating it if needed.
// Clients share the factory transport so connections are pooled across callers.
func (f *HTTPClientFactory) GetClient(purpose string, timeout time.Duration) *http.Client {
	f.mu.RLock()
	if client, exists := f.clients[purpose]; exists {
		f.mu.RUnlock()
		return client
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	// Double-check after acquiring write lock
	if client, exists := f.clients[purpose]; exists {
		return client
	}

	client := &http.Client{
		Transport: f.transport,
		Timeout:   timeout,
	}
	f.clients[purpose] = client
	return client
}

// CloseIdleConnections closes idle connections in the shared transport
func (f *HTTPClientFactory) CloseIdleConnections() {
	f.transport.CloseIdleConnections()
}

var (
	defaultFactory     *HTTPClientFactory
	defaultFactoryOnce sync.Once
)

// GetDefaultFactory returns the process-wide HTTP client factory
func GetDefaultFactory() *HTTPClientFactory {
	defaultFactoryOnce.Do(func() {
		defaultFactory = NewHTTPClientFactory(DefaultHTTPClientConfig())
	})
	return defaultFactory
}
