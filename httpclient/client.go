// Package httpclient is the authenticated request pipeline between the SDK
// and the dietician backend. Every request carries the stored bearer token;
// a 401 triggers exactly one token refresh and one replay before the
// failure is handed to the caller.
package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/octabyte/dietician-client/auth"
	"github.com/octabyte/dietician-client/config"
	"github.com/octabyte/dietician-client/models"
	"github.com/octabyte/dietician-client/otel"
	"github.com/octabyte/dietician-client/utils/logger"
)

const refreshPath = "/auth/refresh"

// Client wraps a resty client with bearer attachment and the
// refresh-on-401 protocol. It borrows the access token from the token
// store per request and only ever writes the store on refresh.
type Client struct {
	rest   *resty.Client
	tokens *auth.TokenStore
}

func New(cfg *config.Config, tokens *auth.TokenStore) *Client {
	rest := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	rest.JSONMarshal = json.Marshal
	rest.JSONUnmarshal = json.Unmarshal

	return &Client{rest: rest, tokens: tokens}
}

func (c *Client) BaseURL() string {
	return c.rest.BaseURL
}

// SetDefaultBearer installs a client-wide bearer used when the token store
// has no access token yet. The OAuth bridge sets this right after a
// migration so the first /auth/me call is authenticated.
func (c *Client) SetDefaultBearer(token string) {
	c.rest.SetAuthToken(token)
}

// call is the envelope carried through the pipeline. The retry count lives
// here explicitly instead of as a hidden flag on a shared request object.
type call struct {
	method    string
	path      string
	body      interface{}
	query     map[string]string
	result    interface{}
	formData  map[string]string
	fileField string
	fileName  string
	fileBytes []byte
	retries   int
}

func (c *Client) Get(ctx context.Context, path string, query map[string]string, result interface{}) error {
	return c.do(ctx, &call{method: http.MethodGet, path: path, query: query, result: result})
}

func (c *Client) Post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, &call{method: http.MethodPost, path: path, body: body, result: result})
}

func (c *Client) Put(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, &call{method: http.MethodPut, path: path, body: body, result: result})
}

func (c *Client) Patch(ctx context.Context, path string, query map[string]string, body, result interface{}) error {
	return c.do(ctx, &call{method: http.MethodPatch, path: path, query: query, body: body, result: result})
}

func (c *Client) Delete(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, &call{method: http.MethodDelete, path: path, result: result})
}

// PostMultipart uploads a file plus form fields. No JSON content type is
// forced here; the transport sets the boundary-aware multipart header.
// The file is buffered up front so a refresh-triggered replay rebuilds the
// multipart body from the same bytes instead of an exhausted reader.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, fileField, fileName string, file io.Reader, result interface{}) error {
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	return c.do(ctx, &call{
		method:    http.MethodPost,
		path:      path,
		formData:  fields,
		fileField: fileField,
		fileName:  fileName,
		fileBytes: data,
		result:    result,
	})
}

func (c *Client) do(ctx context.Context, cl *call) error {
	ctx, finish := otel.StartHTTPSpan(ctx, "dietician-client", cl.method, c.rest.BaseURL, cl.path)

	resp, err := c.execute(ctx, cl)
	if err != nil {
		finish(0, err)
		return err
	}

	if resp.StatusCode() == http.StatusUnauthorized && cl.retries == 0 {
		cl.retries++

		if rerr := c.refreshAccessToken(ctx); rerr != nil {
			// Fatal to the session: force back to unauthenticated on
			// the next startup check.
			if cerr := c.tokens.ClearAll(ctx); cerr != nil {
				logger.LogError("failed to clear token store after refresh failure", zap.Error(cerr))
			}
			finish(resp.StatusCode(), nil)
			return httpError(resp)
		}

		resp, err = c.execute(ctx, cl)
		if err != nil {
			finish(0, err)
			return err
		}
		// A second 401 lands here and propagates below; the retry
		// budget is spent, so no loop is possible.
	}

	finish(resp.StatusCode(), nil)

	if resp.IsError() {
		return httpError(resp)
	}
	return nil
}

func (c *Client) execute(ctx context.Context, cl *call) (*resty.Response, error) {
	r := c.rest.R().SetContext(ctx)

	token, err := c.tokens.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}
	if token != "" {
		r.SetAuthToken(token)
	}

	if cl.query != nil {
		r.SetQueryParams(cl.query)
	}
	if cl.body != nil {
		r.SetBody(cl.body)
	}
	if cl.fileBytes != nil {
		r.SetFileReader(cl.fileField, cl.fileName, bytes.NewReader(cl.fileBytes))
		if cl.formData != nil {
			r.SetFormData(cl.formData)
		}
	}
	if cl.result != nil {
		r.SetResult(cl.result)
	}

	return r.Execute(cl.method, cl.path)
}

// refreshAccessToken exchanges the stored refresh token for a new access
// token and persists it. The refresh call itself goes out without the
// retry envelope, so a 401 on it can never recurse.
func (c *Client) refreshAccessToken(ctx context.Context) error {
	refresh, err := c.tokens.GetRefreshToken(ctx)
	if err != nil {
		return err
	}
	if refresh == "" {
		return &HTTPError{Status: http.StatusUnauthorized}
	}

	var refreshed models.AuthResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(models.RefreshTokenRequest{RefreshToken: refresh}).
		SetResult(&refreshed).
		Post(refreshPath)
	if err != nil {
		return err
	}
	if resp.IsError() {
		logger.LogWarn("token refresh rejected by backend", zap.Int("status", resp.StatusCode()))
		return httpError(resp)
	}

	// The refresh endpoint rotates the access token; the refresh slot is
	// only touched when the backend issues a replacement.
	if refreshed.RefreshToken != "" {
		return c.tokens.SetTokens(ctx, refreshed.AccessToken, refreshed.RefreshToken)
	}
	return c.tokens.SetAccessToken(ctx, refreshed.AccessToken)
}

func httpError(resp *resty.Response) error {
	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return &HTTPError{Status: resp.StatusCode(), Body: body}
}
