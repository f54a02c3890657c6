package twilio

import (
	"net/http"
	"strings"

	"github.com/twilio/twilio-go/client"
)

// SignatureHeader carries the request signature computed by Twilio.
const SignatureHeader = "X-Twilio-Signature"

// WebhookVerifier handles webhook signature verification
type WebhookVerifier struct {
	validator  client.RequestValidator
	webhookURL string
}

// NewWebhookVerifier creates a verifier for authToken. webhookURL is the
// public URL configured in the Twilio console; when empty it is rebuilt from
// the incoming request.
func NewWebhookVerifier(authToken, webhookURL string) *WebhookVerifier {
	return &WebhookVerifier{
		validator:  client.NewRequestValidator(authToken),
		webhookURL: webhookURL,
	}
}

// VerifyRequest checks the signature of a form-encoded webhook request.
// ParseForm must succeed before the signature can be checked.
func (v *WebhookVerifier) VerifyRequest(r *http.Request) bool {
	signature := r.Header.Get(SignatureHeader)
	if signature == "" {
		return false
	}
	if err := r.ParseForm(); err != nil {
		return false
	}

	params := make(map[string]string, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	return v.validator.Validate(v.requestURL(r), params, signature)
}

func (v *WebhookVerifier) requestURL(r *http.Request) string {
	if v.webhookURL != "" {
		return v.webhookURL
	}

	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
