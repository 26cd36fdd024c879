// Package fetch provides the single outbound HTTP client shared by every
// document handler that reads a DocumentUrl (C6 docx/googledoc sources),
// grounded on the teacher's analyzeHTTPClient in internal/handler/url_analyze.go.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/brillob/dtce/internal/apierrors"
	"github.com/brillob/dtce/internal/types"
	"github.com/brillob/dtce/internal/types/interfaces"
)

// Document resolves a JobRequest's source bytes from either its object
// store FilePath or its DocumentUrl, the common first step of every C6
// document handler.
func Document(ctx context.Context, jobReq types.JobRequest, store interfaces.ObjectStore) ([]byte, error) {
	if jobReq.FilePath != "" {
		r, err := store.Download(ctx, jobReq.FilePath)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	}
	if jobReq.DocumentUrl != "" {
		return Bytes(ctx, jobReq.DocumentUrl)
	}
	return nil, apierrors.NewValidation("job request has neither FilePath nor DocumentUrl")
}

const userAgent = "Mozilla/5.0 (compatible; DocumentTemplateBot/1.0)"

var client = &http.Client{
	Timeout: 30 * time.Second,
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		if len(via) >= 5 {
			return http.ErrUseLastResponse
		}
		return nil
	},
}

// Bytes performs a GET against rawURL and returns the full response body.
// It refuses internal/loopback targets (SSRF guard) and non-2xx responses.
func Bytes(ctx context.Context, rawURL string) ([]byte, error) {
	if isInternalURL(rawURL) {
		return nil, apierrors.NewValidation("document URL resolves to a disallowed address")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apierrors.NewValidation("invalid document URL: %v", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, apierrors.NewBackendUnavailable(err, "fetching document URL")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apierrors.NewMalformedDocument("document URL returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("fetch: read response body: %w", err)
	}
	return body, nil
}

// isInternalURL rejects non-http(s) schemes and loopback/private/link-local
// hosts, mirroring the teacher's SSRF guard.
func isInternalURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return true
	}
	host := u.Hostname()
	if host == "" || host == "localhost" {
		return true
	}
	ips, err := net.LookupIP(host)
	if err != nil {
		return true
	}
	for _, ip := range ips {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() {
			return true
		}
	}
	return false
}
