// Package whatsapp sends WhatsApp messages through the Twilio Messages API.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	twilioClient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// DefaultBaseURL is the host the Twilio SDK talks to.
const DefaultBaseURL = "https://api.twilio.com"

var ErrNotConfigured = errors.New("whatsapp sender not configured")

type Message struct {
	To   string
	Body string
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

type TwilioSender struct {
	AccountSID string
	AuthToken  string
	From       string
	client     *twilio.RestClient
}

// NewTwilioSender builds a sender on the Twilio REST client. A baseURL other
// than DefaultBaseURL redirects every API call to that host.
func NewTwilioSender(baseURL, sid, token, from string) *TwilioSender {
	httpClient := &http.Client{Timeout: 10 * time.Second}
	if base, err := url.Parse(strings.TrimRight(baseURL, "/")); err == nil && base.Host != "" && base.String() != DefaultBaseURL {
		httpClient.Transport = rebase{base: base, next: http.DefaultTransport}
	}

	c := &twilioClient.Client{
		Credentials: twilioClient.NewCredentials(sid, token),
		HTTPClient:  httpClient,
	}
	c.SetAccountSid(sid)

	return &TwilioSender{
		AccountSID: sid,
		AuthToken:  token,
		From:       from,
		client:     twilio.NewRestClientWithParams(twilio.ClientParams{Client: c}),
	}
}

// Configured reports whether credentials and a sender number are present.
func (s *TwilioSender) Configured() bool {
	return s != nil && s.AccountSID != "" && s.AuthToken != "" && s.From != "" && s.client != nil
}

func (s *TwilioSender) Send(ctx context.Context, m Message) error {
	if !s.Configured() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(Address(s.From))
	params.SetTo(Address(m.To))
	params.SetBody(m.Body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		var te *twilioClient.TwilioRestError
		if errors.As(err, &te) {
			return fmt.Errorf("twilio: status %d code %d: %s", te.Status, te.Code, te.Message)
		}
		return fmt.Errorf("twilio request: %w", err)
	}
	return nil
}

// rebase sends requests to base, keeping path and query.
type rebase struct {
	base *url.URL
	next http.RoundTripper
}

func (t rebase) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = t.base.Scheme
	r.URL.Host = t.base.Host
	r.Host = t.base.Host
	return t.next.RoundTrip(r)
}

// Address prefixes a phone number with the whatsapp: scheme Twilio expects.
func Address(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "whatsapp:") {
		return phone
	}
	phone = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
	return "whatsapp:" + phone
}
