package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sandboxServer(t *testing.T, seeding, message string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/authenticate":
			if r.Header.Get("x-api-key") != "key" || r.Header.Get("x-api-secret") != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"invalid credentials"}`))
				return
			}
			_, _ = w.Write([]byte(`{"access_token":"tok-1"}`))
		case "/kyc/pan-aadhaar/status":
			if r.Header.Get("authorization") != "tok-1" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			var in map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "in.co.sandbox.kyc.pan_aadhaar.status", in["@entity"])
			assert.Equal(t, "ABCDE1234F", in["pan"])
			assert.Equal(t, "123456789012", in["aadhaar_number"])
			assert.Equal(t, "Y", in["consent"])
			_ = json.NewEncoder(w).Encode(map[string]any{
				"code": 200,
				"data": map[string]string{"aadhaar_seeding_status": seeding, "message": message},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestSandboxClientLinked(t *testing.T) {
	srv := sandboxServer(t, "y", "Your PAN is linked to Aadhaar Number XXXX9012")
	defer srv.Close()

	linked, err := NewSandboxClient(srv.URL+"/", "key", "secret", "2.0").PanAadhaarLinked(context.Background(), "ABCDE1234F", "123456789012")
	require.NoError(t, err)
	assert.True(t, linked)
}

func TestSandboxClientNotLinked(t *testing.T) {
	srv := sandboxServer(t, "n", "Your PAN is not linked to Aadhaar")
	defer srv.Close()

	linked, err := NewSandboxClient(srv.URL, "key", "secret", "2.0").PanAadhaarLinked(context.Background(), "ABCDE1234F", "123456789012")
	require.NoError(t, err)
	assert.False(t, linked)
}

func TestSandboxClientAuthFailure(t *testing.T) {
	srv := sandboxServer(t, "y", "Your PAN is linked to Aadhaar Number XXXX9012")
	defer srv.Close()

	_, err := NewSandboxClient(srv.URL, "key", "wrong", "2.0").PanAadhaarLinked(context.Background(), "ABCDE1234F", "123456789012")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
