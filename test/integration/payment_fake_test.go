package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// declinedPhone is refused by the fake provider.
const declinedPhone = "254799999999"

type stkPush struct {
	PhoneNumber string      `json:"phone_number"`
	Email       string      `json:"email"`
	Amount      json.Number `json:"amount"`
	APIRef      string      `json:"api_ref"`
}

type chargeback struct {
	Invoice string      `json:"invoice"`
	Amount  json.Number `json:"amount"`
}

// fakeProvider records STK pushes and chargebacks.
type fakeProvider struct {
	mu          sync.Mutex
	pushes      []stkPush
	chargebacks []chargeback
}

func newFakeProvider(t *testing.T) (*fakeProvider, *httptest.Server) {
	t.Helper()
	p := &fakeProvider{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/payment/mpesa-stk-push/", func(w http.ResponseWriter, r *http.Request) {
		var req stkPush
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p.mu.Lock()
		p.pushes = append(p.pushes, req)
		n := len(p.pushes)
		p.mu.Unlock()

		status := "SUCCESS"
		if req.PhoneNumber == declinedPhone {
			status = "FAILED"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     fmt.Sprintf("PAY-%d", n),
			"status": status,
			"invoice": map[string]string{
				"invoice_id": fmt.Sprintf("INV-%d", n),
				"state":      "PENDING",
			},
		})
	})
	mux.HandleFunc("POST /api/v1/chargebacks/", func(w http.ResponseWriter, r *http.Request) {
		var req chargeback
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p.mu.Lock()
		p.chargebacks = append(p.chargebacks, req)
		p.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return p, srv
}

func (p *fakeProvider) Pushes() []stkPush {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]stkPush(nil), p.pushes...)
}
