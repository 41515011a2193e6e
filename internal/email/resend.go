package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ciplastic/support-tickets/internal/config"
	"github.com/ciplastic/support-tickets/internal/domain"
	"github.com/ciplastic/support-tickets/pkg/util"
)

const defaultEndpoint = "https://api.resend.com/emails"

// Mailer sends the "ticket resuelto" notification to a patient.
type Mailer interface {
	NotifyResolution(ctx context.Context, to string, numero int, titulo, nombrePaciente string) (string, error)
}

// ResendClient calls the Resend transactional email API.
type ResendClient struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
}

// NewResendClient builds a client from config. The API key may be absent; the
// precondition is checked per send so the service can start without it.
func NewResendClient(cfg config.ResendConfig) *ResendClient {
	return &ResendClient{
		apiKey:   cfg.APIKey,
		from:     cfg.From,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// NotifyResolution sends the templated resolution email and returns the
// provider-assigned message id. Empty recipient or missing credential fails
// before any network call.
func (c *ResendClient) NotifyResolution(ctx context.Context, to string, numero int, titulo, nombrePaciente string) (string, error) {
	if strings.TrimSpace(to) == "" {
		return "", util.NewValidationError("no hay email para notificar", nil)
	}
	if c.apiKey == "" {
		return "", util.NewConfigError("RESEND_API_KEY")
	}

	padded := domain.FormatNumero(numero)
	payload := sendRequest{
		From:    c.from,
		To:      []string{to},
		Subject: fmt.Sprintf("Tu ticket #%s ha sido resuelto", padded),
		HTML:    resolutionBody(padded, titulo, nombrePaciente),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", util.NewEmailSendError(err, nil)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", util.NewEmailSendError(nil, map[string]any{
			"provider_status": resp.StatusCode,
		})
	}

	var parsed sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	return parsed.ID, nil
}

func resolutionBody(numero, titulo, nombrePaciente string) string {
	return fmt.Sprintf(`
		<div style="font-family: 'Segoe UI', Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
			<div style="background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); padding: 30px; border-radius: 16px 16px 0 0; text-align: center;">
				<h1 style="color: white; margin: 0; font-size: 24px;">Ciplastic CRM Care</h1>
			</div>
			<div style="background: #f8f9fa; padding: 30px; border-radius: 0 0 16px 16px;">
				<h2 style="color: #27ae60; margin-top: 0;">Tu ticket ha sido resuelto</h2>
				<p style="color: #2c3e50; font-size: 16px;">Hola <strong>%s</strong>,</p>
				<p style="color: #2c3e50; font-size: 16px;">Te informamos que tu ticket ha sido atendido y resuelto.</p>
				<div style="background: white; border-left: 4px solid #27ae60; padding: 15px; margin: 20px 0; border-radius: 4px;">
					<p style="margin: 0; color: #7f8c8d; font-size: 14px;">Ticket #%s</p>
					<p style="margin: 5px 0 0 0; color: #2c3e50; font-size: 16px; font-weight: 600;">%s</p>
				</div>
				<p style="color: #7f8c8d; font-size: 14px;">Si tienes alguna duda adicional, no dudes en contactarnos.</p>
				<p style="color: #2c3e50; font-size: 16px; margin-top: 30px;">Saludos,<br><strong>Equipo de Soporte</strong></p>
			</div>
		</div>`, nombrePaciente, numero, titulo)
}
