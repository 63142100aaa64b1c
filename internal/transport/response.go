package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/xcp-ng/ownersync/pkg/errors"
)

// DecodeResponse decodes a JSON response into the target structure.
// Non-2xx status codes become typed API errors so callers can check
// errors.IsNotFound / errors.IsAuthError instead of status codes.
func DecodeResponse(resp *http.Response, target any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &errors.APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   resp.Request.URL.String(),
			Message:    string(body),
		}
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", "response", err)
	}

	return nil
}
