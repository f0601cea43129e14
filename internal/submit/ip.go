package submit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Public IP lookup services, tried in order.
var DefaultIPServices = []string{
	"https://api.ipify.org?format=json",
	"https://ipapi.co/json/",
}

// IPResolver finds the public address of the submitting client.
type IPResolver interface {
	ClientIP(ctx context.Context) (string, error)
}

// PublicIPResolver asks public lookup services for the caller's address.
type PublicIPResolver struct {
	log      *zap.Logger
	http     *http.Client
	services []string
}

// NewPublicIPResolver returns a resolver for services, or DefaultIPServices
// when none are given.
func NewPublicIPResolver(log *zap.Logger, hc *http.Client, services ...string) *PublicIPResolver {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	if len(services) == 0 {
		services = DefaultIPServices
	}
	return &PublicIPResolver{log: log, http: hc, services: services}
}

// ClientIP returns the first address any service reports.
func (r *PublicIPResolver) ClientIP(ctx context.Context) (string, error) {
	var errs []error
	for _, svc := range r.services {
		ip, err := r.lookup(ctx, svc)
		if err == nil {
			return ip, nil
		}
		errs = append(errs, err)
	}
	r.log.Warn("could not determine client IP address", zap.Error(errors.Join(errs...)))
	return "", errors.Join(errs...)
}

func (r *PublicIPResolver) lookup(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%s: status %d", url, resp.StatusCode)
	}
	var body struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&body); err != nil {
		return "", fmt.Errorf("%s: %w", url, err)
	}
	if strings.TrimSpace(body.IP) == "" {
		return "", fmt.Errorf("%s: empty ip", url)
	}
	return body.IP, nil
}
