// SPDX-License-Identifier: Apache-2.0
package wizard

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Work-Fort/Intake/pkg/form"
)

// Receipt acknowledges a successful submission. Message, when set,
// replaces the controller's default success notice.
type Receipt struct {
	Message string
}

// Gateway persists a completed wizard. It is called at most once per
// explicit Advance and is never retried by the controller.
type Gateway interface {
	Submit(ctx context.Context, snapshot form.Snapshot) (Receipt, error)
}

// GatewayFunc adapts a function to Gateway
type GatewayFunc func(ctx context.Context, snapshot form.Snapshot) (Receipt, error)

// Submit implements Gateway
func (f GatewayFunc) Submit(ctx context.Context, snapshot form.Snapshot) (Receipt, error) {
	return f(ctx, snapshot)
}

// Navigator receives control once a wizard has been submitted
type Navigator interface {
	Completed(snapshot form.Snapshot)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(snapshot form.Snapshot)

// Completed implements Navigator
func (f NavigatorFunc) Completed(snapshot form.Snapshot) {
	f(snapshot)
}

// Submission is a single in-flight gateway call. It carries the snapshot
// captured when the final step was advanced, never a live model.
type Submission struct {
	ID        string
	Flow      string
	Snapshot  form.Snapshot
	StartedAt time.Time

	gateway    Gateway
	dispatched atomic.Bool
}

func newSubmission(flow string, snapshot form.Snapshot, gateway Gateway) *Submission {
	return &Submission{
		ID:        uuid.NewString(),
		Flow:      flow,
		Snapshot:  snapshot,
		StartedAt: time.Now(),
		gateway:   gateway,
	}
}

// Run calls the gateway. A second call returns ErrAlreadyRun without
// touching the gateway.
func (s *Submission) Run(ctx context.Context) (Receipt, error) {
	if !s.dispatched.CompareAndSwap(false, true) {
		return Receipt{}, ErrAlreadyRun
	}
	return s.gateway.Submit(ctx, s.Snapshot)
}
