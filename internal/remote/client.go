// Package remote implements engine.Backend against the hosted JSON API.
// Derived properties are computed server-side and ride along in the write
// response envelopes.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tartampluch/go-keepintouch/internal/config"
	"github.com/tartampluch/go-keepintouch/internal/engine"
)

// Client talks to the remote API over HTTP with basic auth.
type Client struct {
	base   *url.URL
	user   string
	pass   string
	client *http.Client
}

// NewClient validates the base URL and builds a client with configured
// timeouts. Only http and https are accepted.
func NewClient(rawURL, user, pass string) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	return &Client{
		base: u,
		user: user,
		pass: pass,
		client: &http.Client{
			Timeout: config.HTTPTimeout,
		},
	}, nil
}

// addEnvelope is the response to a creation request: the assigned identity
// plus the owning relationship's refreshed derived properties.
type addEnvelope struct {
	InsertedID string                   `json:"insertedId"`
	Properties engine.DerivedProperties `json:"updatedRelationshipProperties"`
}

// updateEnvelope is the response to an update or interaction delete.
type updateEnvelope struct {
	Properties engine.DerivedProperties `json:"updatedRelationshipProperties"`
}

// statusGroup is one bucket of the GET /relationships response. The status
// and color fields ride along in the payload but the classification is
// recomputed locally from each relationship's own derived properties.
type statusGroup struct {
	Relationships []engine.Relationship `json:"relationships"`
}

// groupedPayload is the GET /relationships response: a JSON object with one
// group per urgency status key.
type groupedPayload struct {
	Today        statusGroup `json:"Due Today"`
	Overdue      statusGroup `json:"Overdue"`
	Soon         statusGroup `json:"Due Soon"`
	Good         statusGroup `json:"No Attention Needed"`
	NotAvailable statusGroup `json:"Due Date N/A"`
}

// flatten concatenates the buckets in display order.
func (p groupedPayload) flatten() []engine.Relationship {
	var relationships []engine.Relationship
	for _, group := range []statusGroup{p.Today, p.Overdue, p.Soon, p.Good, p.NotAvailable} {
		relationships = append(relationships, group.Relationships...)
	}
	return relationships
}

func (c *Client) Interactions(ctx context.Context) ([]engine.Interaction, error) {
	var interactions []engine.Interaction
	err := c.do(ctx, http.MethodGet, nil, &interactions, config.APIPathInteractions)
	return interactions, err
}

func (c *Client) RelationshipsGrouped(ctx context.Context) ([]engine.UrgencyGroup, error) {
	var payload groupedPayload
	if err := c.do(ctx, http.MethodGet, nil, &payload, config.APIPathRelationships); err != nil {
		return nil, err
	}
	return engine.Classify(payload.flatten()), nil
}

func (c *Client) Relationship(ctx context.Context, id string) (engine.Relationship, error) {
	var r engine.Relationship
	err := c.do(ctx, http.MethodGet, nil, &r, config.APIPathRelationships, id)
	return r, err
}

func (c *Client) Interaction(ctx context.Context, relationshipID, id string) (engine.Interaction, error) {
	var i engine.Interaction
	err := c.do(ctx, http.MethodGet, nil, &i, config.APIPathRelationships, relationshipID, config.APIPathInteractions, id)
	return i, err
}

func (c *Client) AddRelationship(ctx context.Context, r engine.Relationship) (string, engine.DerivedProperties, error) {
	var envelope addEnvelope
	if err := c.do(ctx, http.MethodPost, r, &envelope, config.APIPathRelationships); err != nil {
		return "", engine.DerivedProperties{}, err
	}
	return envelope.InsertedID, envelope.Properties, nil
}

func (c *Client) UpdateRelationship(ctx context.Context, r engine.Relationship) (engine.DerivedProperties, error) {
	var envelope updateEnvelope
	err := c.do(ctx, http.MethodPut, r, &envelope, config.APIPathRelationships, r.ID)
	return envelope.Properties, err
}

func (c *Client) DeleteRelationship(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, nil, nil, config.APIPathRelationships, id)
}

func (c *Client) AddInteraction(ctx context.Context, i engine.Interaction) (string, engine.DerivedProperties, error) {
	var envelope addEnvelope
	err := c.do(ctx, http.MethodPost, i, &envelope,
		config.APIPathRelationships, i.RelationshipID, config.APIPathInteractions)
	if err != nil {
		return "", engine.DerivedProperties{}, err
	}
	return envelope.InsertedID, envelope.Properties, nil
}

func (c *Client) UpdateInteraction(ctx context.Context, i engine.Interaction) (engine.DerivedProperties, error) {
	var envelope updateEnvelope
	err := c.do(ctx, http.MethodPut, i, &envelope,
		config.APIPathRelationships, i.RelationshipID, config.APIPathInteractions, i.ID)
	return envelope.Properties, err
}

func (c *Client) DeleteInteraction(ctx context.Context, relationshipID, id string) (engine.DerivedProperties, error) {
	var envelope updateEnvelope
	err := c.do(ctx, http.MethodDelete, nil, &envelope,
		config.APIPathRelationships, relationshipID, config.APIPathInteractions, id)
	return envelope.Properties, err
}

// do performs one round-trip: optional JSON request body, basic auth, size
// limited JSON decode into out. Query parameters never appear in logs.
func (c *Client) do(ctx context.Context, method string, body, out any, elem ...string) error {
	target := c.base.JoinPath(elem...)
	safeURL := target.Scheme + "://" + target.Host + target.Path

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompRemote),
		slog.String(config.LogKeyURL, safeURL),
	)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: %w", config.ErrRequestBuild, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrRequestBuild, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.MimeJSON)
	if body != nil {
		req.Header.Set(config.HeaderContentType, config.MimeJSON)
	}
	if c.user != "" || c.pass != "" {
		req.SetBasicAuth(c.user, c.pass)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrRequestSend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("Server returned error status",
			slog.Int(config.LogKeyStatus, resp.StatusCode),
		)
		return fmt.Errorf("%s: %d %s", config.ErrUnexpectedStatus, resp.StatusCode, resp.Status)
	}

	if out == nil {
		return nil
	}

	limited := io.LimitReader(resp.Body, config.MaxHTTPResponseSize)
	if err := json.NewDecoder(limited).Decode(out); err != nil {
		return fmt.Errorf("%s: %w", config.ErrResponseDecode, err)
	}
	return nil
}
