package sms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/SteveElouga/waterbill-api/config"
	"github.com/SteveElouga/waterbill-api/services/logging"
	"github.com/SteveElouga/waterbill-api/services/verification"
	"go.uber.org/zap"
)

// CarrierGateway posts messages to an SMS provider's HTTP API. A client
// timeout surfaces as a failed send rather than an error so callers treat it
// like any other delivery failure; retry stays with the user via the resend
// endpoints.
type CarrierGateway struct {
	cfg     *config.SMSConfig
	appName string
	client  *http.Client
	logger  *logging.Service
}

func NewCarrierGateway(cfg *config.SMSConfig, appName string, logger *logging.Service) (*CarrierGateway, error) {
	if cfg.APIURL == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("carrier SMS gateway requires WB_SMS_API_URL and WB_SMS_API_KEY")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &CarrierGateway{
		cfg:     cfg,
		appName: appName,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

func (g *CarrierGateway) Available() bool {
	return g.cfg.APIURL != "" && g.cfg.APIKey != ""
}

func (g *CarrierGateway) SendCode(phone, code string) (bool, error) {
	return g.send(phone, codeMessage(g.appName, code))
}

func (g *CarrierGateway) SendVerification(phone, code string, purpose verification.Purpose, redirectURL string) (bool, error) {
	return g.send(phone, verificationMessage(g.appName, code, purpose, redirectURL))
}

func (g *CarrierGateway) SendConfirmation(phone string, purpose verification.Purpose, details string) (bool, error) {
	return g.send(phone, confirmationMessage(g.appName, purpose, details))
}

type carrierRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
}

func (g *CarrierGateway) send(phone, message string) (bool, error) {
	payload, err := json.Marshal(carrierRequest{
		To:      phone,
		From:    g.cfg.Sender,
		Message: message,
	})
	if err != nil {
		return false, fmt.Errorf("failed to encode SMS payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, g.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("failed to build SMS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		// Timeouts and transport errors count as a failed delivery.
		g.logger.Warn("SMS dispatch failed",
			zap.String("phone", phone),
			zap.Error(err))
		return false, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.logger.Warn("SMS provider rejected message",
			zap.String("phone", phone),
			zap.Int("status", resp.StatusCode))
		return false, nil
	}

	g.logger.Info("SMS dispatched", zap.String("phone", phone))
	return true, nil
}
