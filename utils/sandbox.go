package utils

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const panLinkedPrefix = "Your PAN is linked to Aadhaar Number"

// SandboxClient asks the Sandbox KYC API whether a PAN is seeded with an
// Aadhaar number.
type SandboxClient struct {
	client    *resty.Client
	apiKey    string
	secretKey string
	version   string
}

func NewSandboxClient(baseURL, apiKey, secretKey, version string) *SandboxClient {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(15*time.Second).
		SetHeader("accept", "application/json").
		SetHeader("x-api-key", apiKey)
	return &SandboxClient{client: client, apiKey: apiKey, secretKey: secretKey, version: version}
}

// authenticate exchanges the key pair for a short lived access token.
func (s *SandboxClient) authenticate(ctx context.Context) (string, error) {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("x-api-secret", s.secretKey).
		SetHeader("x-api-version", s.version).
		SetResult(&out).
		Post("/authenticate")
	if err != nil {
		return "", fmt.Errorf("failed to make HTTP request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("authentication failed with status %d: %s", resp.StatusCode(), resp.String())
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("access token is missing in the response")
	}
	return out.AccessToken, nil
}

type panAadhaarStatusRequest struct {
	Entity        string `json:"@entity"`
	Pan           string `json:"pan"`
	AadhaarNumber string `json:"aadhaar_number"`
	Consent       string `json:"consent"`
	Reason        string `json:"reason"`
}

type panAadhaarStatusResponse struct {
	Data struct {
		AadhaarSeedingStatus string `json:"aadhaar_seeding_status"`
		Message              string `json:"message"`
	} `json:"data"`
}

// PanAadhaarLinked reports whether the PAN is linked. A false answer is not
// an error; transport and auth failures are.
func (s *SandboxClient) PanAadhaarLinked(ctx context.Context, pan, aadhaar string) (bool, error) {
	token, err := s.authenticate(ctx)
	if err != nil {
		return false, err
	}

	var out panAadhaarStatusResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("authorization", token).
		SetHeader("x-api-version", s.version).
		SetBody(panAadhaarStatusRequest{
			Entity:        "in.co.sandbox.kyc.pan_aadhaar.status",
			Pan:           pan,
			AadhaarNumber: aadhaar,
			Consent:       "Y",
			Reason:        "Verification",
		}).
		SetResult(&out).
		Post("/kyc/pan-aadhaar/status")
	if err != nil {
		return false, fmt.Errorf("failed to send request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return false, fmt.Errorf("pan-aadhaar status returned %d: %s", resp.StatusCode(), resp.String())
	}

	linked := strings.EqualFold(out.Data.AadhaarSeedingStatus, "y") &&
		strings.HasPrefix(out.Data.Message, panLinkedPrefix)
	return linked, nil
}
