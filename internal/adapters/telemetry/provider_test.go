package telemetry_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/require"
	"github.com/vito/progrock"
	"go.trai.ch/mason/internal/adapters/telemetry"
)

// captureWriter records every status update pushed by the recorder.
type captureWriter struct {
	mu      sync.Mutex
	updates []*progrock.StatusUpdate
	closed  bool
}

func (w *captureWriter) WriteStatus(update *progrock.StatusUpdate) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.updates = append(w.updates, update)
	return nil
}

func (w *captureWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

// vertex returns the latest recorded state of a vertex by digest.
func (w *captureWriter) vertex(id string) *progrock.Vertex {
	w.mu.Lock()
	defer w.mu.Unlock()
	var last *progrock.Vertex
	for _, update := range w.updates {
		for _, v := range update.Vertexes {
			if v.Id == id {
				last = v
			}
		}
	}
	return last
}

func TestNew(t *testing.T) {
	require.NotNil(t, telemetry.New())
}

func TestRecorder_VertexLifecycle(t *testing.T) {
	w := &captureWriter{}
	rec := telemetry.NewRecorder(w)

	_, vertex := rec.Start(context.Background(), "zlib")

	id := digest.FromString("zlib").String()
	v := w.vertex(id)
	require.NotNil(t, v)
	require.Equal(t, "zlib", v.Name)
	require.Nil(t, v.Completed)

	_, err := vertex.Write([]byte("checking for gcc... yes\n"))
	require.NoError(t, err)

	vertex.Complete(nil)
	v = w.vertex(id)
	require.NotNil(t, v.Completed)
	require.Nil(t, v.Error)

	require.NoError(t, rec.Close())
	require.True(t, w.closed)
}

func TestRecorder_VertexFailure(t *testing.T) {
	w := &captureWriter{}
	rec := telemetry.NewRecorder(w)

	_, vertex := rec.Start(context.Background(), "openssl")
	vertex.Complete(errors.New("make: *** [all] Error 2"))

	v := w.vertex(digest.FromString("openssl").String())
	require.NotNil(t, v)
	require.NotNil(t, v.Completed)
	require.NotNil(t, v.Error)
	require.Contains(t, *v.Error, "Error 2")
}

func TestRecorder_CachedVertex(t *testing.T) {
	w := &captureWriter{}
	rec := telemetry.NewRecorder(w)

	_, vertex := rec.Start(context.Background(), "zlib")
	vertex.Cached()

	v := w.vertex(digest.FromString("zlib").String())
	require.NotNil(t, v)
	require.True(t, v.Cached)
}
