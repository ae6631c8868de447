package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"taskcli/internal/notify"
	"taskcli/internal/service"
)

const requestIDHeader = "X-Request-Id"

// bearerHook attaches the stored token, if any. A missing token is not an
// error here; the backend rejects unauthenticated calls itself.
func bearerHook(src oauth2.TokenSource) RequestHook {
	return func(r *http.Request) {
		tok, err := src.Token()
		if err != nil || tok.AccessToken == "" {
			return
		}
		tok.SetAuthHeader(r)
	}
}

// requestIDHook tags each request for correlation in server logs.
func requestIDHook() RequestHook {
	return func(r *http.Request) {
		r.Header.Set(requestIDHeader, uuid.NewString())
	}
}

// transportError classifies a failure that produced no response.
func transportError(err error) *service.Error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &service.Error{Kind: service.KindTimeout, Err: err}
	}
	return &service.Error{Kind: service.KindNetwork, Err: err}
}

// statusError classifies a non-2xx response. It returns nil for success.
func statusError(resp *http.Response, body []byte) *service.Error {
	gerr := googleapi.CheckResponseWithBody(resp, body)
	if gerr == nil {
		return nil
	}

	serr := &service.Error{
		Status:  resp.StatusCode,
		Message: serverMessage(gerr, body),
		Err:     gerr,
	}
	switch code := resp.StatusCode; {
	case code == http.StatusUnauthorized:
		serr.Kind = service.KindUnauthorized
	case code == http.StatusForbidden:
		serr.Kind = service.KindForbidden
	case code == http.StatusNotFound:
		serr.Kind = service.KindNotFound
	case code >= 500:
		serr.Kind = service.KindServer
	default:
		serr.Kind = service.KindRequest
	}
	return serr
}

// serverMessage extracts a human-readable message from an error body. The
// backend answers with either {"message": "..."} or plain text.
func serverMessage(err error, body []byte) string {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Message != "" {
		return gerr.Message
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}
	if strings.HasPrefix(text, "{") {
		var m struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(body, &m) == nil {
			if m.Message != "" {
				return m.Message
			}
			return m.Error
		}
		return ""
	}
	if strings.HasPrefix(text, "<") {
		return ""
	}
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

// reject is the response-side interceptor: it reports serr to the user,
// fires the session-invalidated event on 401, and hands serr back so the
// caller can still react.
func (c *Client) reject(req *http.Request, serr *service.Error) error {
	if errors.Is(serr.Err, context.Canceled) {
		return serr
	}

	c.log.Debug("request failed",
		"method", req.Method,
		"path", req.URL.Path,
		"kind", serr.Kind.String(),
		"status", serr.Status,
		"request_id", req.Header.Get(requestIDHeader),
	)

	switch serr.Kind {
	case service.KindUnauthorized:
		c.notify.Notify(notify.Error, "unauthorized, please log in again")
		c.mu.Lock()
		subs := append([]func(){}, c.onUnauthorized...)
		c.mu.Unlock()
		for _, fn := range subs {
			fn()
		}
	case service.KindForbidden:
		c.notify.Notify(notify.Error, "access forbidden")
	case service.KindNotFound:
		c.notify.Notify(notify.Warning, "resource not found")
	case service.KindServer:
		c.notify.Notify(notify.Error, "server error occurred")
	case service.KindTimeout:
		c.notify.Notify(notify.Error, "request timed out")
	case service.KindNetwork:
		c.notify.Notify(notify.Error, "network error, check your connection")
	default:
		msg := serr.Message
		if msg == "" {
			msg = "request rejected"
		}
		c.notify.Notify(notify.Error, msg)
	}
	return serr
}
