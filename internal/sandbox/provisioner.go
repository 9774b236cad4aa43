package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"openlms/course-app/internal/domain"

	"github.com/google/uuid"
)

// Provisioner initializes a practice sandbox for a user. Implementations are
// external provisioning systems; the enrollment core only ever calls this
// through the background Dispatcher, never inline.
type Provisioner interface {
	Initialize(ctx context.Context, user *domain.User, sandboxType string) (*domain.Sandbox, error)
}

// httpProvisioner calls a remote provisioning endpoint.
type httpProvisioner struct {
	endpoint string
	client   *http.Client
}

// NewHTTPProvisioner creates a Provisioner that POSTs provisioning requests
// to the given endpoint.
func NewHTTPProvisioner(endpoint string) Provisioner {
	return &httpProvisioner{
		endpoint: endpoint,
		client:   &http.Client{},
	}
}

type provisionRequest struct {
	SandboxID string `json:"sandboxId"`
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail"`
	Type      string `json:"type"`
}

func (p *httpProvisioner) Initialize(ctx context.Context, user *domain.User, sandboxType string) (*domain.Sandbox, error) {
	sandbox := &domain.Sandbox{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Type:      sandboxType,
		CreatedAt: time.Now().UTC(),
	}

	body, err := json.Marshal(provisionRequest{
		SandboxID: sandbox.ID,
		UserID:    user.ID.Hex(),
		UserEmail: user.Email,
		Type:      sandboxType,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sandbox provisioner returned status %d", resp.StatusCode)
	}
	return sandbox, nil
}
