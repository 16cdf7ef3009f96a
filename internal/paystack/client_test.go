package paystack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sterlingcraftco/taxaware-backend/internal/config"
)

func TestClient_InitializeTransaction(t *testing.T) {
	t.Run("successful initialize", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/transaction/initialize", r.URL.Path)
			assert.Equal(t, "Bearer sk_test_abc", r.Header.Get("Authorization"))

			var body InitializeRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, int64(500000), body.Amount)
			assert.Equal(t, "savings_deposit", body.Metadata["purpose"])

			json.NewEncoder(w).Encode(map[string]any{
				"status":  true,
				"message": "Authorization URL created",
				"data": map[string]any{
					"authorization_url": "https://checkout.paystack.com/abc",
					"access_code":       "abc",
					"reference":         "ref-123",
				},
			})
		}))
		defer server.Close()

		client := NewClient(config.PaystackConfig{SecretKey: "sk_test_abc", BaseURL: server.URL})

		session, err := client.InitializeTransaction(context.Background(), InitializeRequest{
			Email:  "ada@example.com",
			Amount: 500000,
			Metadata: map[string]any{
				"purpose": "savings_deposit",
			},
		})
		assert.NoError(t, err)
		assert.Equal(t, "ref-123", session.Reference)
		assert.Equal(t, "https://checkout.paystack.com/abc", session.AuthorizationURL)
	})

	t.Run("gateway-level failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"status":  false,
				"message": "Invalid key",
			})
		}))
		defer server.Close()

		client := NewClient(config.PaystackConfig{SecretKey: "sk_bad", BaseURL: server.URL})

		_, err := client.InitializeTransaction(context.Background(), InitializeRequest{
			Email:  "ada@example.com",
			Amount: 500000,
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid key")
	})

	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(config.PaystackConfig{SecretKey: "sk_test", BaseURL: server.URL})

		_, err := client.InitializeTransaction(context.Background(), InitializeRequest{
			Email:  "ada@example.com",
			Amount: 500000,
		})
		assert.Error(t, err)
	})
}

func TestClient_VerifyTransaction(t *testing.T) {
	t.Run("successful verify", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/transaction/verify/ref-123", r.URL.Path)

			json.NewEncoder(w).Encode(map[string]any{
				"status":  true,
				"message": "Verification successful",
				"data": map[string]any{
					"status":    "success",
					"reference": "ref-123",
					"amount":    500000,
					"currency":  "NGN",
					"metadata": map[string]any{
						"purpose": "savings_deposit",
						"user_id": "user-1",
					},
				},
			})
		}))
		defer server.Close()

		client := NewClient(config.PaystackConfig{SecretKey: "sk_test", BaseURL: server.URL})

		data, err := client.VerifyTransaction(context.Background(), "ref-123")
		assert.NoError(t, err)
		assert.Equal(t, "success", data.Status)
		assert.Equal(t, int64(500000), data.Amount)
		assert.Equal(t, "savings_deposit", data.Metadata["purpose"])
	})

	t.Run("non-success gateway status is not an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"status": true,
				"data": map[string]any{
					"status":    "abandoned",
					"reference": "ref-123",
					"amount":    500000,
				},
			})
		}))
		defer server.Close()

		client := NewClient(config.PaystackConfig{SecretKey: "sk_test", BaseURL: server.URL})

		data, err := client.VerifyTransaction(context.Background(), "ref-123")
		assert.NoError(t, err)
		assert.Equal(t, "abandoned", data.Status)
	})

	t.Run("context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		client := NewClient(config.PaystackConfig{SecretKey: "sk_test", BaseURL: server.URL})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.VerifyTransaction(ctx, "ref-123")
		assert.Error(t, err)
	})
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(config.PaystackConfig{SecretKey: "sk_test"})
	assert.Equal(t, defaultBaseURL, client.baseURL)
	assert.NotNil(t, client.httpClient)
}
