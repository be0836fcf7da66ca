// Package notify delivers back-office notifications to a Slack incoming
// webhook. Delivery is best effort: failures are reported in the Result but
// never interrupt the request that triggered them.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Attachment is one Slack message attachment.
type Attachment struct {
	Color  string  `json:"color,omitempty"`
	Title  string  `json:"title,omitempty"`
	Text   string  `json:"text,omitempty"`
	Fields []Field `json:"fields,omitempty"`
}

// Field is a titled value inside an attachment. Short fields render
// side by side.
type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// Result reports the outcome of one delivery attempt. A disabled client
// (no webhook configured) reports OK=false with a nil Err.
type Result struct {
	OK  bool
	Err error
}

// Client posts messages to a Slack incoming webhook.
type Client struct {
	webhookURL string
	channel    string
	username   string
	http       *http.Client
}

// NewClient builds a Slack client. An empty webhookURL yields a disabled
// client whose Send is a no-op.
func NewClient(webhookURL, channel string) *Client {
	return &Client{
		webhookURL: webhookURL,
		channel:    channel,
		username:   "TerraSale Bot",
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a webhook URL is configured.
func (c *Client) Enabled() bool { return c.webhookURL != "" }

type payload struct {
	Channel     string       `json:"channel,omitempty"`
	Username    string       `json:"username"`
	IconEmoji   string       `json:"icon_emoji"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Send posts one message. It never panics and never propagates an error
// into the caller's flow; inspect the Result where delivery matters.
func (c *Client) Send(ctx context.Context, text string, attachments ...Attachment) Result {
	if !c.Enabled() {
		return Result{OK: false}
	}
	body, err := json.Marshal(payload{
		Channel:     c.channel,
		Username:    c.username,
		IconEmoji:   ":house:",
		Text:        text,
		Attachments: attachments,
	})
	if err != nil {
		return Result{Err: fmt.Errorf("slack: marshal payload: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return Result{Err: fmt.Errorf("slack: build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return Result{Err: fmt.Errorf("slack: post webhook: %w", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{Err: fmt.Errorf("slack: webhook returned %s", resp.Status)}
	}
	return Result{OK: true}
}

// PropertyCreated announces a new listing.
func (c *Client) PropertyCreated(ctx context.Context, title, location, price string) Result {
	return c.Send(ctx, ":house: New property listed",
		Attachment{
			Color: "#36a64f",
			Fields: []Field{
				{Title: "Title", Value: title, Short: true},
				{Title: "Location", Value: location, Short: true},
				{Title: "Price", Value: price, Short: true},
			},
		})
}

// PropertyUpdated announces a listing change.
func (c *Client) PropertyUpdated(ctx context.Context, title string, changed []string) Result {
	fields := []Field{{Title: "Title", Value: title, Short: true}}
	if len(changed) > 0 {
		fields = append(fields, Field{Title: "Changed", Value: strings.Join(changed, ", "), Short: true})
	}
	return c.Send(ctx, ":pencil2: Property updated",
		Attachment{Color: "#439fe0", Fields: fields})
}

// ContactRequest announces a new lead.
func (c *Client) ContactRequest(ctx context.Context, name, email, property string) Result {
	fields := []Field{{Title: "Name", Value: name, Short: true}}
	if email != "" {
		fields = append(fields, Field{Title: "Email", Value: email, Short: true})
	}
	if property != "" {
		fields = append(fields, Field{Title: "Property", Value: property, Short: true})
	}
	return c.Send(ctx, ":telephone_receiver: New contact request",
		Attachment{Color: "#f2c744", Fields: fields})
}

// NewUser announces a new account, seller or admin.
func (c *Client) NewUser(ctx context.Context, name, email, role string) Result {
	return c.Send(ctx, ":bust_in_silhouette: New "+role+" registered",
		Attachment{
			Color: "#7b68ee",
			Fields: []Field{
				{Title: "Name", Value: name, Short: true},
				{Title: "Email", Value: email, Short: true},
			},
		})
}

// SaleRecorded announces a completed sale.
func (c *Client) SaleRecorded(ctx context.Context, property, buyer, amount string) Result {
	return c.Send(ctx, ":moneybag: Sale recorded",
		Attachment{
			Color: "#2eb886",
			Fields: []Field{
				{Title: "Property", Value: property, Short: true},
				{Title: "Buyer", Value: buyer, Short: true},
				{Title: "Amount", Value: amount, Short: true},
			},
		})
}
