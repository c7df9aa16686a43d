// Package client is the HTTP client used by recipectl.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/identity"
	"github.com/pageza/recipeshare/backend/internal/model"
)

// Client calls the recipeshare API. Requests carry the token of the current
// session, if any.
type Client struct {
	baseURL string
	http    *http.Client
	session *identity.Session
}

// New creates a client for the API at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, session *identity.Session) *Client {
	if session == nil {
		session = identity.NewSession(nil)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		http:    &http.Client{Timeout: 30 * time.Second},
		session: session,
	}
}

// Session returns the session the client signs requests with.
func (c *Client) Session() *identity.Session {
	return c.session
}

// Login signs in and records the result in the session.
func (c *Client) Login(ctx context.Context, email, password string) (*identity.AuthResult, error) {
	var result identity.AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &result); err != nil {
		return nil, err
	}
	c.session.SignedIn(&result)
	return &result, nil
}

// Logout revokes the session token. The local session is cleared even when
// the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	if c.session.Current() == nil {
		return nil
	}
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	c.session.SignedOut()
	return err
}

func (c *Client) Profile(ctx context.Context) (*model.Profile, error) {
	var p model.Profile
	if err := c.do(ctx, http.MethodGet, "/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListRecipes(ctx context.Context, q model.ListQuery) (*model.Page, error) {
	params := url.Values{}
	set := func(k, v string) {
		if v != "" {
			params.Set(k, v)
		}
	}
	set("category", q.Category)
	set("owner", q.OwnerID)
	set("tag", q.Tag)
	set("sort", string(q.Sort))
	set("cursor", q.Cursor)
	if q.FeaturedOnly {
		params.Set("featured", "true")
	}
	if q.PageSize > 0 {
		params.Set("limit", strconv.Itoa(q.PageSize))
	}
	path := "/recipes"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var page model.Page
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	var r model.Recipe
	if err := c.do(ctx, http.MethodGet, "/recipes/"+url.PathEscape(id), nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) ToggleLike(ctx context.Context, id string) (model.InteractionState, error) {
	var state model.InteractionState
	err := c.do(ctx, http.MethodPost, "/recipes/"+url.PathEscape(id)+"/like", nil, &state)
	return state, err
}

func (c *Client) ToggleSave(ctx context.Context, id string) (model.InteractionState, error) {
	var state model.InteractionState
	err := c.do(ctx, http.MethodPost, "/recipes/"+url.PathEscape(id)+"/save", nil, &state)
	return state, err
}

func (c *Client) Rate(ctx context.Context, id string, value int) (model.RatingState, error) {
	var state model.RatingState
	err := c.do(ctx, http.MethodPut, "/recipes/"+url.PathEscape(id)+"/rating", map[string]int{"value": value}, &state)
	return state, err
}

func (c *Client) AddComment(ctx context.Context, id, text string) (*model.Comment, error) {
	var comment model.Comment
	if err := c.do(ctx, http.MethodPost, "/recipes/"+url.PathEscape(id)+"/comments", map[string]string{"text": text}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// errorBody mirrors the API error response.
type errorBody struct {
	Error  string            `json:"error"`
	Code   apperror.Kind     `json:"code"`
	Fields map[string]string `json:"fields"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if auth := c.session.Current(); auth != nil {
		req.Header.Set("Authorization", "Bearer "+auth.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperror.Unavailable(method+" "+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e errorBody
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Code == "" {
			return apperror.Internal(method+" "+path, fmt.Errorf("unexpected status %s", resp.Status))
		}
		return &apperror.Error{Kind: e.Code, Message: e.Error, Fields: e.Fields}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
