// SPDX-License-Identifier: Apache-2.0
package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Work-Fort/Intake/pkg/form"
	"github.com/Work-Fort/Intake/pkg/wizard"
)

func TestInstrument(t *testing.T) {
	m := New()
	fail := true
	gw := Instrument(m, "clinic-registration", wizard.GatewayFunc(func(context.Context, form.Snapshot) (wizard.Receipt, error) {
		if fail {
			return wizard.Receipt{}, errors.New("offline")
		}
		return wizard.Receipt{Message: "ok"}, nil
	}))

	_, err := gw.Submit(context.Background(), form.Snapshot{})
	require.Error(t, err)
	fail = false
	receipt, err := gw.Submit(context.Background(), form.Snapshot{})
	require.NoError(t, err)
	assert.Equal(t, "ok", receipt.Message)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("clinic-registration", OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("clinic-registration", OutcomeSuccess)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))
}

func TestInstrumentNilMetrics(t *testing.T) {
	called := 0
	gw := wizard.GatewayFunc(func(context.Context, form.Snapshot) (wizard.Receipt, error) {
		called++
		return wizard.Receipt{}, nil
	})
	_, err := Instrument(nil, "x", gw).Submit(context.Background(), form.Snapshot{})
	require.NoError(t, err)
	assert.Equal(t, 1, called)
}

func TestRouter(t *testing.T) {
	m := New()
	m.Observe("client-registration", 0, nil)
	srv := httptest.NewServer(Router(m))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	rec := httptest.NewRecorder()
	Router(m).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `intake_submissions_total{flow="client-registration",outcome="success"} 1`))
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", New()) }()
	cancel()
	assert.NoError(t, <-done)
}
