package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

// RobotsGate checks crawl permission against each host's robots.txt. Rules
// are fetched once per host and cached for the gate's lifetime, which is
// one crawl job.
type RobotsGate struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger

	mu     sync.Mutex
	groups map[string]*robotstxt.Group
}

// NewRobotsGate creates a robots gate with the given fetch timeout
func NewRobotsGate(timeout time.Duration, userAgent string, logger *zap.Logger) *RobotsGate {
	return &RobotsGate{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    logger,
		groups:    make(map[string]*robotstxt.Group),
	}
}

// Allowed reports whether the URL may be crawled. A missing robots.txt
// (404) allows everything, and so does a fetch or parse error: robots
// enforcement must never make a site uncrawlable by accident.
func (g *RobotsGate) Allowed(ctx context.Context, pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return true
	}

	group, err := g.groupFor(ctx, u)
	if err != nil {
		g.logger.Debug("robots.txt unavailable, allowing",
			zap.String("host", u.Host), zap.Error(err))
		return true
	}
	if group == nil {
		return true
	}
	return group.Test(u.Path)
}

func (g *RobotsGate) groupFor(ctx context.Context, u *url.URL) (*robotstxt.Group, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if group, ok := g.groups[u.Host]; ok {
		return group, nil
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	robots, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, err
	}

	group := robots.FindGroup(g.userAgent)
	g.groups[u.Host] = group
	return group, nil
}
