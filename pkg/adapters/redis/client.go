package redis

import (
	"context"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	backend "github.com/redis/go-redis/v9"
)

// EnvURL names the environment variable consulted when no broker address is given.
const EnvURL = "FLO_REDIS_URL"

const (
	defaultHost = "localhost"
	defaultPort = 6379
)

var endpointRE = regexp.MustCompile(`^([^:/]+)?(?::(\d+))?(?:/(\d+))?$`)

// Endpoint is a resolved broker address.
type Endpoint struct {
	Host     string
	Port     int
	DB       int
	Username string
	Password string
}

// String returns the pool key of the endpoint: host:port/db.
func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d/%d", e.Host, e.Port, e.DB)
}

// Addr returns host:port.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// ParseURL resolves a broker address written as host[:port][/db] or as a
// redis:// URL. An empty string falls back to $FLO_REDIS_URL and then to
// localhost:6379/0.
func ParseURL(raw string) (Endpoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv(EnvURL))
	}

	if strings.Contains(raw, "://") {
		opts, err := backend.ParseURL(raw)
		if err != nil {
			return Endpoint{}, fmt.Errorf("invalid redis url %q: %w", raw, err)
		}
		host, portStr, err := net.SplitHostPort(opts.Addr)
		if err != nil {
			return Endpoint{}, fmt.Errorf("invalid redis address %q: %w", opts.Addr, err)
		}
		port, _ := strconv.Atoi(portStr)
		return Endpoint{
			Host:     host,
			Port:     port,
			DB:       opts.DB,
			Username: opts.Username,
			Password: opts.Password,
		}, nil
	}

	m := endpointRE.FindStringSubmatch(raw)
	if m == nil {
		return Endpoint{}, fmt.Errorf("invalid redis address %q: want host[:port][/db]", raw)
	}
	ep := Endpoint{Host: defaultHost, Port: defaultPort}
	if m[1] != "" {
		ep.Host = m[1]
	}
	if m[2] != "" {
		ep.Port, _ = strconv.Atoi(m[2])
	}
	if m[3] != "" {
		ep.DB, _ = strconv.Atoi(m[3])
	}
	return ep, nil
}

// Manager pools broker clients per endpoint.
// Safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	clients map[string]*backend.Client
}

// NewManager creates an empty client pool.
func NewManager() *Manager {
	return &Manager{clients: make(map[string]*backend.Client)}
}

var defaultManager = NewManager()

// DefaultManager returns the process-wide client pool.
func DefaultManager() *Manager {
	return defaultManager
}

// Client returns the pooled client for url, dialing and pinging it on first use.
func (m *Manager) Client(ctx context.Context, url string) (*backend.Client, error) {
	ep, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := ep.String()
	if c, ok := m.clients[key]; ok {
		return c, nil
	}

	c := backend.NewClient(&backend.Options{
		Addr:     ep.Addr(),
		DB:       ep.DB,
		Username: ep.Username,
		Password: ep.Password,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", key, err)
	}
	m.clients[key] = c
	return c, nil
}

// Close closes every pooled client.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for key, c := range m.clients {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.clients, key)
	}
	return firstErr
}
