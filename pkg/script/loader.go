package script

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/overture-run/overture/pkg/actor"
)

// httpClient is shared by every script fetch in the process.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// load reads the raw script text. Local paths and http(s) URLs are supported;
// any other URL scheme is rejected.
func load(ctx context.Context, source string) (string, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return fetch(ctx, source)
	}
	if i := strings.Index(source, "://"); i >= 0 {
		return "", &actor.InvalidScriptError{
			Source: source,
			Diag:   fmt.Errorf("unsupported URL scheme %q, only http and https are allowed", source[:i]),
		}
	}

	raw, err := os.ReadFile(source)
	if err != nil {
		return "", &actor.InvalidScriptError{Source: source, Diag: err}
	}
	return string(raw), nil
}

func fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &actor.InvalidScriptError{Source: url, Diag: err}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", &actor.InvalidScriptError{Source: url, Diag: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &actor.InvalidScriptError{
			Source: url,
			Diag:   fmt.Errorf("fetch returned %s", resp.Status),
		}
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &actor.InvalidScriptError{Source: url, Diag: err}
	}
	return string(raw), nil
}
