package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultEmailJSEndpoint is the EmailJS REST send endpoint.
const DefaultEmailJSEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// EmailJSRelay sends forms through the EmailJS REST API. The service,
// template and public key are public identifiers, not credentials.
type EmailJSRelay struct {
	Endpoint   string
	ServiceID  string
	TemplateID string
	PublicKey  string
	Client     *http.Client
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

// NewEmailJSRelay returns a relay for the given identifiers.
func NewEmailJSRelay(endpoint, serviceID, templateID, publicKey string) *EmailJSRelay {
	if endpoint == "" {
		endpoint = DefaultEmailJSEndpoint
	}
	return &EmailJSRelay{
		Endpoint:   endpoint,
		ServiceID:  serviceID,
		TemplateID: templateID,
		PublicKey:  publicKey,
		Client:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (r *EmailJSRelay) Send(ctx context.Context, f Form) error {
	body, err := json.Marshal(emailJSRequest{
		ServiceID:  r.ServiceID,
		TemplateID: r.TemplateID,
		UserID:     r.PublicKey,
		TemplateParams: map[string]string{
			"name":    f.Name,
			"email":   f.Email,
			"message": f.Message,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: encode request: %v", ErrRelay, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrRelay, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRelay, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: emailjs status %d: %s", ErrRelay, resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
