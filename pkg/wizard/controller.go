// SPDX-License-Identifier: Apache-2.0
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Work-Fort/Intake/pkg/form"
	"github.com/Work-Fort/Intake/pkg/notify"
	"github.com/Work-Fort/Intake/pkg/validation"
)

// DefaultSuccessMessage is used when the gateway receipt carries no message
const DefaultSuccessMessage = "Submitted successfully!"

// Action is a navigation control the UI may bind to a key
type Action int

const (
	ActionNone Action = iota
	ActionAdvance
	ActionSkip
)

func (a Action) String() string {
	switch a {
	case ActionAdvance:
		return "advance"
	case ActionSkip:
		return "skip"
	default:
		return "none"
	}
}

// StepStatus describes a step relative to the session position
type StepStatus int

const (
	StepPending StepStatus = iota
	StepActive
	StepComplete
	StepSkipped
)

func (s StepStatus) String() string {
	switch s {
	case StepActive:
		return "active"
	case StepComplete:
		return "complete"
	case StepSkipped:
		return "skipped"
	default:
		return "pending"
	}
}

// Options configures a Controller
type Options struct {
	Gateway   Gateway
	Notifier  notify.Notifier
	Navigator Navigator
	// Seed pre-populates the model (profile edit). Dirty() compares against it.
	Seed *form.Snapshot
	// SuccessMessage overrides DefaultSuccessMessage
	SuccessMessage string
	Logger         *log.Logger
}

// Controller is the wizard state machine. All methods are safe to call
// from the UI goroutine and from a submission goroutine.
type Controller struct {
	mu sync.Mutex

	flow      Flow
	gateway   Gateway
	notifier  notify.Notifier
	navigator Navigator
	success   string
	logger    *log.Logger

	model    form.Model
	errs     validation.Errors
	baseline form.Snapshot
	touched  map[string]bool

	current    int
	skipped    map[int]bool
	submitting bool
	pending    *Submission
	done       bool
}

// New creates a controller positioned on the first step
func New(flow Flow, opts Options) (*Controller, error) {
	if err := flow.Validate(); err != nil {
		return nil, err
	}
	if opts.Gateway == nil {
		return nil, fmt.Errorf("wizard %s: gateway is required", flow.Name)
	}

	model, err := flow.NewModel()
	if err != nil {
		return nil, fmt.Errorf("wizard %s: %w", flow.Name, err)
	}
	if opts.Seed != nil {
		model, err = model.Replace(*opts.Seed)
		if err != nil {
			return nil, fmt.Errorf("wizard %s: seed: %w", flow.Name, err)
		}
	}

	c := &Controller{
		flow:      flow,
		gateway:   opts.Gateway,
		notifier:  opts.Notifier,
		navigator: opts.Navigator,
		success:   opts.SuccessMessage,
		logger:    opts.Logger,
		model:     model,
		baseline:  model.Snapshot(),
		touched:   make(map[string]bool),
		skipped:   make(map[int]bool),
	}
	if c.notifier == nil {
		c.notifier = notify.Log{Logger: opts.Logger}
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	if c.success == "" {
		c.success = DefaultSuccessMessage
	}
	c.errs = flow.Schema.Validate(model)
	return c, nil
}

// Flow returns the flow definition
func (c *Controller) Flow() Flow {
	return c.flow
}

// Model returns the current field model
func (c *Controller) Model() form.Model {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

// Snapshot returns a detached copy of the current values
func (c *Controller) Snapshot() form.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model.Snapshot()
}

// Current returns the index of the active step
func (c *Controller) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Step returns the active step descriptor
func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flow.Steps[c.current]
}

// IsLast reports whether the active step is the final one
func (c *Controller) IsLast() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isLastLocked()
}

func (c *Controller) isLastLocked() bool {
	return c.current == len(c.flow.Steps)-1
}

// Skipped reports whether step i is recorded as skipped
func (c *Controller) Skipped(i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.skipped[i]
}

// SkippedSteps returns the skipped step indices in ascending order
func (c *Controller) SkippedSteps() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]int, 0, len(c.skipped))
	for i := range c.skipped {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Submitting reports whether a submission is in flight
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// Done reports whether the wizard was submitted successfully
func (c *Controller) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Status returns the display status of step i
func (c *Controller) Status(i int) StepStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.done:
		return StepComplete
	case i == c.current:
		return StepActive
	case c.skipped[i]:
		return StepSkipped
	case i < c.current:
		return StepComplete
	default:
		return StepPending
	}
}

// Set replaces a field value
func (c *Controller) Set(key string, v form.Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.writableLocked(key); err != nil {
		return err
	}
	next, err := c.model.With(key, v)
	if err != nil {
		return err
	}
	c.applyLocked(next)
	return nil
}

// SetText sets a scalar field
func (c *Controller) SetText(key, text string) error {
	return c.Set(key, form.Text(text))
}

// Toggle flips option membership in a collection field
func (c *Controller) Toggle(key, option string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.writableLocked(key); err != nil {
		return err
	}
	next, err := c.model.Toggle(key, option)
	if err != nil {
		return err
	}
	c.applyLocked(next)
	return nil
}

// Seed bulk-replaces every field from a snapshot and resets the dirty baseline
func (c *Controller) Seed(s form.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := c.model.Replace(s)
	if err != nil {
		return err
	}
	c.applyLocked(next)
	c.baseline = next.Snapshot()
	return nil
}

func (c *Controller) writableLocked(key string) error {
	field, ok := c.model.Field(key)
	if !ok {
		return fmt.Errorf("%w: %s", form.ErrUnknownField, key)
	}
	if field.ReadOnly {
		return fmt.Errorf("%w: %s", ErrReadOnlyField, key)
	}
	return nil
}

func (c *Controller) applyLocked(next form.Model) {
	c.model = next
	c.errs = c.flow.Schema.Validate(next)
}

// Blur marks a field as touched so its error becomes visible
func (c *Controller) Blur(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.model.Has(key) {
		c.touched[key] = true
	}
}

// TouchStep marks every field of the active step as touched
func (c *Controller) TouchStep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range c.flow.Steps[c.current].Fields {
		c.touched[key] = true
	}
}

// Touched reports whether a field has lost focus at least once
func (c *Controller) Touched(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched[key]
}

// Errors returns the full error set for the current model
func (c *Controller) Errors() validation.Errors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs
}

// FieldError returns the error to display for key, empty until touched
func (c *Controller) FieldError(key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.touched[key] {
		return ""
	}
	return c.errs.Get(key)
}

// Dirty reports whether the model differs from its seed or empty defaults
func (c *Controller) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.model.Snapshot().Equal(c.baseline)
}

// GateSatisfied evaluates the active step's gate
func (c *Controller) GateSatisfied() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gateLocked()
}

func (c *Controller) gateLocked() bool {
	step := c.flow.Steps[c.current]
	return step.Gate.Satisfied(step.Fields, c.model, c.errs)
}

// CanAdvance reports whether the Advance control is enabled
func (c *Controller) CanAdvance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canAdvanceLocked()
}

func (c *Controller) canAdvanceLocked() bool {
	if c.submitting || c.done {
		return false
	}
	step := c.flow.Steps[c.current]
	return c.gateLocked() || (step.Optional && c.skipped[c.current])
}

// CanRetreat reports whether the Back control is enabled
func (c *Controller) CanRetreat() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.submitting && !c.done && c.current > 0
}

// CanSkip reports whether the Skip control is enabled
func (c *Controller) CanSkip() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canSkipLocked()
}

func (c *Controller) canSkipLocked() bool {
	return !c.submitting && !c.done && c.flow.Steps[c.current].Optional
}

// DefaultAction returns the control bound to the primary key. Advance wins
// over Skip whenever both are enabled.
func (c *Controller) DefaultAction() Action {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.canAdvanceLocked():
		return ActionAdvance
	case c.canSkipLocked():
		return ActionSkip
	default:
		return ActionNone
	}
}

// Incomplete describes why the active step cannot advance
func (c *Controller) Incomplete() *IncompleteError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.incompleteLocked()
}

func (c *Controller) incompleteLocked() *IncompleteError {
	step := c.flow.Steps[c.current]
	_, all := step.Gate.(AllGate)
	fields := make(map[string]string)
	for _, key := range step.Fields {
		switch {
		case c.errs.Has(key):
			fields[key] = c.errs.Get(key)
		case all && c.model.Get(key).IsEmpty():
			fields[key] = "required"
		}
	}
	return &IncompleteError{Step: step.Label, Fields: fields}
}

func (c *Controller) navigableLocked(op string) error {
	if c.submitting {
		return &InvariantError{Op: op, Reason: "submission in flight"}
	}
	if c.done {
		return ErrFinished
	}
	return nil
}

// Advance moves to the next step. On the final step it captures a
// snapshot and returns the Submission the caller must Run and Finish.
func (c *Controller) Advance() (*Submission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.navigableLocked("advance"); err != nil {
		return nil, err
	}
	if !c.canAdvanceLocked() {
		return nil, c.incompleteLocked()
	}
	if c.isLastLocked() {
		return c.beginLocked(), nil
	}
	delete(c.skipped, c.current)
	c.forwardLocked("advance")
	return nil, nil
}

// Retreat moves to the previous step, leaving skip records intact
func (c *Controller) Retreat() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.navigableLocked("retreat"); err != nil {
		return err
	}
	if c.current == 0 {
		return ErrNoPreviousStep
	}
	c.current--
	c.logger.Debug("wizard retreat", "flow", c.flow.Name, "step", c.current)
	return nil
}

// Skip records the active optional step as skipped and moves on without
// consulting its gate. Skipping the final step submits.
func (c *Controller) Skip() (*Submission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.navigableLocked("skip"); err != nil {
		return nil, err
	}
	step := c.flow.Steps[c.current]
	if !step.Optional {
		return nil, &InvariantError{Op: "skip", Reason: fmt.Sprintf("step %q is not optional", step.Label)}
	}
	c.skipped[c.current] = true
	if c.isLastLocked() {
		return c.beginLocked(), nil
	}
	c.forwardLocked("skip")
	return nil, nil
}

// Perform runs the given action
func (c *Controller) Perform(a Action) (*Submission, error) {
	switch a {
	case ActionAdvance:
		return c.Advance()
	case ActionSkip:
		return c.Skip()
	default:
		return nil, c.Incomplete()
	}
}

func (c *Controller) forwardLocked(op string) {
	from := c.current
	c.current++
	delete(c.skipped, c.current)
	c.logger.Debug("wizard "+op, "flow", c.flow.Name, "from", from, "to", c.current)
}

func (c *Controller) beginLocked() *Submission {
	c.submitting = true
	c.pending = newSubmission(c.flow.Name, c.model.Snapshot(), c.gateway)
	c.logger.Debug("wizard submit", "flow", c.flow.Name, "submission", c.pending.ID)
	return c.pending
}

// Finish applies the outcome of a submission. Exactly one notification is
// sent per call. The returned error is non-nil only for a stale submission.
func (c *Controller) Finish(sub *Submission, receipt Receipt, err error) error {
	c.mu.Lock()
	if sub == nil || sub != c.pending {
		c.mu.Unlock()
		return &InvariantError{Op: "finish", Reason: "submission is not in flight"}
	}
	c.pending = nil
	c.submitting = false

	if err != nil {
		c.logger.Error("wizard submission failed", "flow", c.flow.Name, "submission", sub.ID,
			"elapsed", time.Since(sub.StartedAt), "err", err)
		notifier := c.notifier
		c.mu.Unlock()
		notifier.Notify(err.Error(), notify.Error)
		return nil
	}

	delete(c.skipped, len(c.flow.Steps)-1)
	c.done = true
	message := receipt.Message
	if message == "" {
		message = c.success
	}
	c.logger.Info("wizard submitted", "flow", c.flow.Name, "submission", sub.ID,
		"elapsed", time.Since(sub.StartedAt))
	notifier, navigator := c.notifier, c.navigator
	c.mu.Unlock()

	notifier.Notify(message, notify.Success)
	if navigator != nil {
		navigator.Completed(sub.Snapshot)
	}
	return nil
}

// Complete runs a submission and applies its outcome. It returns the
// gateway error, if any, so synchronous callers can set an exit status.
func (c *Controller) Complete(ctx context.Context, sub *Submission) (Receipt, error) {
	receipt, err := sub.Run(ctx)
	if errors.Is(err, ErrAlreadyRun) {
		return Receipt{}, &InvariantError{Op: "complete", Reason: "submission already dispatched"}
	}
	if ferr := c.Finish(sub, receipt, err); ferr != nil {
		return receipt, ferr
	}
	return receipt, err
}

// Submit advances the final step and completes the submission synchronously
func (c *Controller) Submit(ctx context.Context) (Receipt, error) {
	if !c.IsLast() {
		return Receipt{}, fmt.Errorf("%w: not on the final step", ErrGateClosed)
	}
	sub, err := c.Advance()
	if err != nil {
		return Receipt{}, err
	}
	return c.Complete(ctx, sub)
}

// Drive walks the wizard to completion using the default action of each
// step. It stops with an *IncompleteError on the first step that can be
// neither advanced nor skipped.
func (c *Controller) Drive(ctx context.Context) (Receipt, error) {
	for {
		if c.Done() {
			return Receipt{}, ErrFinished
		}
		action := c.DefaultAction()
		if action == ActionNone {
			return Receipt{}, c.Incomplete()
		}
		sub, err := c.Perform(action)
		if err != nil {
			return Receipt{}, err
		}
		if sub != nil {
			return c.Complete(ctx, sub)
		}
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
