package sandbox

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"openlms/course-app/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type recordingProvisioner struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (p *recordingProvisioner) Initialize(ctx context.Context, user *domain.User, sandboxType string) (*domain.Sandbox, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, sandboxType)
	if p.err != nil {
		return nil, p.err
	}
	return &domain.Sandbox{ID: "sbx-1", UserID: user.ID, Type: sandboxType, CreatedAt: time.Now().UTC()}, nil
}

func (p *recordingProvisioner) recorded() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func TestDispatcher_ProcessesEnqueuedRequests(t *testing.T) {
	provisioner := &recordingProvisioner{}
	d := NewDispatcher(provisioner, 8, time.Second, zerolog.Nop())
	d.Start()

	user := &domain.User{ID: primitive.NewObjectID(), Email: "jane@example.com"}
	d.Enqueue(user, "docker")
	d.Enqueue(user, "k8s")

	d.Stop()

	assert.Equal(t, []string{"docker", "k8s"}, provisioner.recorded())
}

func TestDispatcher_FullQueueDropsRequest(t *testing.T) {
	provisioner := &recordingProvisioner{}
	// Worker never started, so the single-slot queue fills immediately.
	d := NewDispatcher(provisioner, 1, time.Second, zerolog.Nop())

	user := &domain.User{ID: primitive.NewObjectID()}
	d.Enqueue(user, "docker")
	d.Enqueue(user, "dropped")

	d.Start()
	d.Stop()

	assert.Equal(t, []string{"docker"}, provisioner.recorded())
}

func TestDispatcher_ProvisionerFailureDoesNotStopWorker(t *testing.T) {
	provisioner := &recordingProvisioner{err: assert.AnError}
	d := NewDispatcher(provisioner, 8, time.Second, zerolog.Nop())
	d.Start()

	user := &domain.User{ID: primitive.NewObjectID()}
	d.Enqueue(user, "docker")
	d.Enqueue(user, "k8s")

	d.Stop()

	assert.Len(t, provisioner.recorded(), 2)
}

func TestDispatcher_StopIsIdempotent(t *testing.T) {
	d := NewDispatcher(&recordingProvisioner{}, 1, time.Second, zerolog.Nop())
	d.Start()
	d.Stop()
	d.Stop()
}

func TestHTTPProvisioner_PostsProvisionRequest(t *testing.T) {
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	user := &domain.User{ID: primitive.NewObjectID(), Email: "jane@example.com"}
	provisioner := NewHTTPProvisioner(server.URL)

	sandbox, err := provisioner.Initialize(context.Background(), user, "docker")

	require.NoError(t, err)
	assert.NotEmpty(t, sandbox.ID)
	assert.Equal(t, user.ID, sandbox.UserID)
	assert.Equal(t, "docker", sandbox.Type)
	assert.Equal(t, "application/json", gotContentType)
}

func TestHTTPProvisioner_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provisioner := NewHTTPProvisioner(server.URL)

	_, err := provisioner.Initialize(context.Background(), &domain.User{ID: primitive.NewObjectID()}, "docker")

	assert.Error(t, err)
}
