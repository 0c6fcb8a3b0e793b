package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func functionServer(t *testing.T, status int, body string, got *Request) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/create-payment-preference", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCreatePreference_Redirect(t *testing.T) {
	var got Request
	srv := functionServer(t, http.StatusOK, `{"redirect_url":"https://pay.example/abc"}`, &got)

	pref, err := New(srv.URL, "key").CreatePreference(context.Background(), Request{
		OrderID: "o1", Method: "checkout", Amount: 42.5,
		Items: []Item{{Title: "X-Burger", Quantity: 1, UnitPrice: 42.5}},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/abc", pref.RedirectURL)
	assert.Nil(t, pref.Pix)
	assert.Equal(t, "o1", got.OrderID)
	assert.Len(t, got.Items, 1)
}

func TestCreatePreference_Pix(t *testing.T) {
	srv := functionServer(t, http.StatusOK, `{"pix":{"qr_code":"000201","qr_code_base64":"aGk="}}`, nil)

	pref, err := New(srv.URL, "key").CreatePreference(context.Background(), Request{OrderID: "o1", Method: "pix"})
	require.NoError(t, err)
	require.NotNil(t, pref.Pix)
	assert.Equal(t, "000201", pref.Pix.QRCode)
}

func TestCreatePreference_RejectsMalformed(t *testing.T) {
	bodies := map[string]string{
		"empty":        `{}`,
		"both":         `{"redirect_url":"https://x","pix":{"qr_code":"a","qr_code_base64":"b"}}`,
		"partial pix":  `{"pix":{"qr_code":"a"}}`,
		"partial both": `{"redirect_url":"https://x","pix":{"qr_code":"a"}}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := functionServer(t, http.StatusOK, body, nil)
			_, err := New(srv.URL, "key").CreatePreference(context.Background(), Request{OrderID: "o1"})
			require.ErrorIs(t, err, ErrBadResponse)
		})
	}
}

func TestCreatePreference_ClientError(t *testing.T) {
	srv := functionServer(t, http.StatusBadRequest, `{"error":"bad"}`, nil)
	_, err := New(srv.URL, "key").CreatePreference(context.Background(), Request{OrderID: "o1"})
	require.ErrorIs(t, err, ErrBadResponse)
}
