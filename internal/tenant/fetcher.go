// Package tenant descarga la configuración pública de la aplicación
// (connections habilitadas) desde el tenant.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/hellojohn-lock/internal/cache"
	"github.com/dropDatabas3/hellojohn-lock/internal/connection"
	"github.com/dropDatabas3/hellojohn-lock/internal/metrics"
	"github.com/dropDatabas3/hellojohn-lock/internal/observability/logger"
)

const (
	maxBody = 1 << 20
	// tope del request compartido cuando el http.Client no trae Timeout
	defaultFetchTimeout = 30 * time.Second
)

var (
	ErrFetchFailed   = errors.New("tenant: failed to fetch the application")
	ErrMissingConfig = errors.New("tenant: configuration url and client id are required")
)

// Fetcher es seguro para uso concurrente; los Fetch simultáneos comparten un
// único request.
type Fetcher struct {
	ConfigurationURL string
	ClientID         string
	HTTP             *http.Client
	// Cache opcional; guarda el JSON crudo por TTL.
	Cache cache.Client
	TTL   time.Duration

	group singleflight.Group
}

// URL => <configurationURL>/client/<clientID>.js
func (f *Fetcher) URL() (string, error) {
	if strings.TrimSpace(f.ConfigurationURL) == "" || strings.TrimSpace(f.ClientID) == "" {
		return "", ErrMissingConfig
	}
	u, err := url.Parse(strings.TrimRight(f.ConfigurationURL, "/"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	return u.JoinPath("client", f.ClientID+".js").String(), nil
}

func (f *Fetcher) cacheKey() string { return "client/" + f.ClientID }

// Fetch retorna el descriptor, del cache si está vigente.
func (f *Fetcher) Fetch(ctx context.Context) (*connection.Descriptor, error) {
	raw, err := f.FetchRaw(ctx)
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}

// FetchRaw retorna el JSON del descriptor ya validado (sin wrapper JSONP).
func (f *Fetcher) FetchRaw(ctx context.Context) ([]byte, error) {
	log := logger.From(ctx).With(logger.Layer("tenant"), logger.Op("Fetch"), logger.ClientID(f.ClientID))

	if f.Cache != nil {
		raw, err := f.Cache.Get(ctx, f.cacheKey())
		switch {
		case err == nil:
			if _, derr := Decode([]byte(raw)); derr == nil {
				metrics.TenantFetches.WithLabelValues(metrics.SourceCache).Inc()
				log.Debug("descriptor from cache")
				return []byte(raw), nil
			}
			log.Warn("cached descriptor invalid, refetching")
		case !cache.IsNotFound(err):
			log.Warn("cache get failed", logger.Err(err))
		}
	}

	// El request compartido no depende del ctx de quien lo inició: si ese
	// caller cancela, los demás siguen esperando el mismo resultado.
	ch := f.group.DoChan(f.cacheKey(), func() (any, error) {
		fctx, cancel := f.flightContext(ctx)
		defer cancel()
		raw, err := f.fetchRaw(fctx)
		if err != nil {
			return nil, err
		}
		if _, err := Decode(raw); err != nil {
			return nil, err
		}
		if f.Cache != nil {
			if err := f.Cache.Set(fctx, f.cacheKey(), string(raw), f.TTL); err != nil {
				log.Warn("cache set failed", logger.Err(err))
			}
		}
		return raw, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		metrics.TenantFetches.WithLabelValues(metrics.SourceError).Inc()
		log.Debug("descriptor fetch abandoned", logger.Err(ctx.Err()))
		return nil, ctx.Err()
	case res = <-ch:
	}
	v, err, shared := res.Val, res.Err, res.Shared
	if err != nil {
		metrics.TenantFetches.WithLabelValues(metrics.SourceError).Inc()
		log.Warn("descriptor fetch failed", logger.Err(err))
		return nil, err
	}
	raw := v.([]byte)
	metrics.TenantFetches.WithLabelValues(metrics.SourceNetwork).Inc()
	log.Debug("descriptor fetched", zap.Bool("shared", shared), zap.Int("bytes", len(raw)))
	return raw, nil
}

// flightContext conserva los valores de ctx (logger) sin su cancelación.
func (f *Fetcher) flightContext(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if f.HTTP != nil && f.HTTP.Timeout > 0 {
		return context.WithCancel(base)
	}
	return context.WithTimeout(base, defaultFetchTimeout)
}

// Invalidate descarta el descriptor cacheado.
func (f *Fetcher) Invalidate(ctx context.Context) error {
	if f.Cache == nil {
		return nil
	}
	return f.Cache.Delete(ctx, f.cacheKey())
}

func (f *Fetcher) fetchRaw(ctx context.Context) ([]byte, error) {
	target, err := f.URL()
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/javascript, application/json")

	client := f.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	start := time.Now()
	resp, err := client.Do(req)
	metrics.TenantFetchLatency.Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	raw, err := StripJSONP(body)
	if err != nil {
		return nil, err
	}
	return []byte(raw), nil
}
