package webhooks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storepulse/storepulse/app/models"
	"github.com/storepulse/storepulse/internal/pkg/woo"
)

type fakeRegistry struct {
	mu      sync.Mutex
	created []models.WebhookRegistration
	failOn  map[string]error
}

func (f *fakeRegistry) Create(_ context.Context, reg *models.WebhookRegistration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failOn[reg.Topic]; ok {
		return err
	}
	reg.ID = fmt.Sprintf("reg-%d", len(f.created)+1)
	f.created = append(f.created, *reg)
	return nil
}

func (f *fakeRegistry) GetByStoreID(context.Context, string) ([]models.WebhookRegistration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.WebhookRegistration(nil), f.created...), nil
}

// upstreamStub answers webhook creation calls, optionally failing per topic.
func upstreamStub(t *testing.T, failTopics map[string]int) *httptest.Server {
	t.Helper()
	var nextID int64
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/wp-json/wc/v3/webhooks", r.URL.Path)

		var body struct {
			Name        string `json:"name"`
			Topic       string `json:"topic"`
			DeliveryURL string `json:"delivery_url"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		if status, ok := failTopics[body.Topic]; ok {
			w.WriteHeader(status)
			return
		}
		nextID++
		json.NewEncoder(w).Encode(woo.Webhook{
			ID:          nextID,
			Name:        body.Name,
			Topic:       body.Topic,
			Status:      "active",
			DeliveryURL: body.DeliveryURL,
		})
	}))
}

func newTestProvisioner(registry *fakeRegistry, upstream *httptest.Server) *Provisioner {
	return &Provisioner{
		registry: registry,
		appName:  "StorePulse",
		baseURL:  "https://api.storepulse.example",
		newClient: func(creds woo.Credentials) *woo.Client {
			return woo.NewClient(woo.Credentials{
				StoreURL:       upstream.URL,
				ConsumerKey:    creds.ConsumerKey,
				ConsumerSecret: creds.ConsumerSecret,
			})
		},
	}
}

func testStore() *models.Store {
	return &models.Store{
		ID:             "42",
		AppUserID:      "user-42",
		StoreURL:       "shop.example.com",
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
	}
}

func TestProvisionRegistersAllTopics(t *testing.T) {
	upstream := upstreamStub(t, nil)
	defer upstream.Close()
	registry := &fakeRegistry{}

	p := newTestProvisioner(registry, upstream)
	regs := p.Provision(context.Background(), testStore())

	require.Len(t, regs, len(Topics))
	for i, topic := range Topics {
		assert.Equal(t, topic, regs[i].Topic)
		assert.Equal(t, "42", regs[i].StoreID)
		assert.Equal(t, "https://api.storepulse.example/api/v1/webhooks/store-events/42", regs[i].DeliveryURL)
		assert.Equal(t, "active", regs[i].Status)
	}
	// Two topics for the same store produce independent rows.
	assert.NotEqual(t, regs[0].WebhookID, regs[1].WebhookID)
}

func TestProvisionContinuesPastUpstreamFailure(t *testing.T) {
	upstream := upstreamStub(t, map[string]int{"order.created": http.StatusInternalServerError})
	defer upstream.Close()
	registry := &fakeRegistry{}

	p := newTestProvisioner(registry, upstream)
	regs := p.Provision(context.Background(), testStore())

	require.Len(t, regs, 1)
	assert.Equal(t, "order.updated", regs[0].Topic)
}

func TestProvisionContinuesPastRegistryFailure(t *testing.T) {
	upstream := upstreamStub(t, nil)
	defer upstream.Close()
	registry := &fakeRegistry{failOn: map[string]error{"order.created": fmt.Errorf("record store down")}}

	p := newTestProvisioner(registry, upstream)
	regs := p.Provision(context.Background(), testStore())

	require.Len(t, regs, 1)
	assert.Equal(t, "order.updated", regs[0].Topic)
}
