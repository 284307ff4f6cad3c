package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/pkiviz/pkg/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHooks_Count(t *testing.T) {
	m := New()
	h := m.Hooks()
	ctx := context.Background()

	sel := domain.NewViewEvent(domain.EventSelect, "s")
	sel.NodeID = "csr"
	h.OnSelect(ctx, sel)
	h.OnSelect(ctx, sel)

	mode := domain.NewViewEvent(domain.EventModeChange, "s")
	mode.BeginnerMode = true
	h.OnModeChange(ctx, mode)

	stop := domain.NewViewEvent(domain.EventPlaybackStop, "s")
	stop.FlowID = "mtls"
	stop.Completed = true
	h.OnPlaybackStop(ctx, stop)

	h.OnCopy(ctx, &domain.CopyEvent{NodeID: "crl"})
	h.OnCopy(ctx, &domain.CopyEvent{NodeID: "crl", Err: errors.New("denied")})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Selections.WithLabelValues("csr")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ModeChanges.WithLabelValues("beginner")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Playbacks.WithLabelValues("mtls", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Copies.WithLabelValues("crl")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CopyFailures.WithLabelValues("crl")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.FlowSteps.WithLabelValues("revocation").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `pkiviz_flow_steps_total{flow_id="revocation"} 1`)
}
