// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package screencopy

import (
	"errors"
	"image"
	"testing"

	"github.com/Elias-Graf/cosmic-comp/eventloop"
	"github.com/Elias-Graf/cosmic-comp/output"
	"github.com/Elias-Graf/cosmic-comp/surface"
	"github.com/Elias-Graf/cosmic-comp/workspace"
)

type renderResult struct {
	damaged bool
	err     error
}

type fakeRenderer struct {
	result     renderResult
	windows    int
	workspaces []ActiveSpace
	onRender   func()
}

func (f *fakeRenderer) RenderWindow(*Session, BufferParams, *surface.Surface) (bool, error) {
	f.windows++
	if f.onRender != nil {
		f.onRender()
	}
	return f.result.damaged, f.result.err
}

func (f *fakeRenderer) RenderWorkspace(_ *Session, _ BufferParams, o *output.Output, h workspace.Handle) (bool, error) {
	f.workspaces = append(f.workspaces, ActiveSpace{Output: o, Workspace: h})
	if f.onRender != nil {
		f.onRender()
	}
	return f.result.damaged, f.result.err
}

type fakeClient struct {
	ready  int
	failed []FailureReason
}

func (c *fakeClient) Ready(*Session, BufferParams) {
	c.ready++
}

func (c *fakeClient) Failed(_ *Session, reason FailureReason) {
	c.failed = append(c.failed, reason)
}

type fixture struct {
	loop     *eventloop.Loop
	renderer *fakeRenderer
	sched    *Scheduler
	client   *fakeClient
	outA     *output.Output
	outB     *output.Output
	wsX      workspace.Handle
	wsY      workspace.Handle
	queue    *Queue
}

func newFixture() *fixture {
	f := &fixture{
		loop:     eventloop.New(),
		renderer: &fakeRenderer{result: renderResult{damaged: true}},
		client:   &fakeClient{},
		outA:     output.New("A", image.Rect(0, 0, 100, 100)),
		outB:     output.New("B", image.Rect(100, 0, 200, 100)),
		wsX:      workspace.NewHandle(),
		wsY:      workspace.NewHandle(),
		queue:    NewQueue("workspace X"),
	}
	f.sched = NewScheduler(f.loop, f.renderer)
	return f
}

func (f *fixture) push(t *testing.T, o *output.Output, h workspace.Handle) *Session {
	t.Helper()
	s := NewSession(WorkspaceTarget{Output: o, Workspace: h}, f.client)
	if err := f.queue.Push(s, newBuffer()); err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	return s
}

func TestScanWorkspaceActiveGoesToBatch(t *testing.T) {
	f := newFixture()
	s := f.push(t, f.outA, f.wsX)

	var batch Batch
	active := NewActiveSet(ActiveSpace{Output: f.outA, Workspace: f.wsX})
	f.sched.ScanWorkspace(f.queue, f.wsX, f.outA, active, &batch)

	if batch.Len() != 1 || batch.Entries()[0].Session != s {
		t.Fatalf("batch = %+v, want the session", batch.Entries())
	}
	if f.queue.Len() != 0 {
		t.Errorf("queue Len() = %d, want 0", f.queue.Len())
	}
	if f.loop.Pending() != 0 {
		t.Errorf("deferred tasks = %d, want 0", f.loop.Pending())
	}
	if s.State() != StateScheduled {
		t.Errorf("State() = %v, want scheduled", s.State())
	}
}

func TestScanWorkspaceOffscreenDefers(t *testing.T) {
	f := newFixture()
	s := f.push(t, f.outA, f.wsX)

	var batch Batch
	active := NewActiveSet(ActiveSpace{Output: f.outA, Workspace: f.wsY})
	f.sched.ScanWorkspace(f.queue, f.wsX, f.outA, active, &batch)

	if batch.IsSet() {
		t.Errorf("batch set for offscreen workspace: %+v", batch.Entries())
	}
	if f.queue.Len() != 0 {
		t.Fatalf("queue Len() = %d, want 0", f.queue.Len())
	}
	if f.loop.Pending() != 1 {
		t.Fatalf("deferred tasks = %d, want 1", f.loop.Pending())
	}

	f.loop.DispatchIdle()
	if len(f.renderer.workspaces) != 1 || f.renderer.workspaces[0] != (ActiveSpace{Output: f.outA, Workspace: f.wsX}) {
		t.Errorf("rendered workspaces = %+v", f.renderer.workspaces)
	}
	if s.State() != StateRendered || f.client.ready != 1 {
		t.Errorf("State() = %v, ready = %d; want rendered, 1", s.State(), f.client.ready)
	}
}

func TestScanWorkspaceUnrelatedStays(t *testing.T) {
	f := newFixture()
	s1 := f.push(t, f.outB, f.wsX) // other output, inactive
	s2 := f.push(t, f.outA, f.wsX) // scanned pair
	s3 := f.push(t, f.outA, f.wsY) // other workspace, inactive

	var batch Batch
	f.sched.ScanWorkspace(f.queue, f.wsX, f.outA, NewActiveSet(), &batch)

	e := f.queue.Entries()
	if len(e) != 2 || e[0].Session != s1 || e[1].Session != s3 {
		t.Errorf("retained = %+v, want s1, s3 in order", e)
	}
	if s1.State() != StatePending || s3.State() != StatePending {
		t.Error("retained sessions changed state")
	}
	if s2.Queue() != nil || f.loop.Pending() != 1 {
		t.Errorf("scanned pair not deferred: queue = %v, tasks = %d", s2.Queue(), f.loop.Pending())
	}
}

func TestNoDamageRequeuesIdempotently(t *testing.T) {
	f := newFixture()
	f.renderer.result = renderResult{damaged: false}
	s := f.push(t, f.outA, f.wsX)
	want := f.queue.Entries()[0]

	for i := 0; i < 3; i++ {
		var batch Batch
		f.sched.ScanWorkspace(f.queue, f.wsX, f.outA, NewActiveSet(), &batch)
		f.loop.DispatchIdle()

		e := f.queue.Entries()
		if len(e) != 1 || e[0] != want {
			t.Fatalf("round %d: queue = %+v, want original pair", i, e)
		}
		if s.State() != StatePending {
			t.Errorf("round %d: State() = %v, want pending", i, s.State())
		}
	}
	if f.client.ready != 0 || len(f.client.failed) != 0 {
		t.Errorf("client notified on no damage: %+v", f.client)
	}
}

func TestRenderFailureFailsSession(t *testing.T) {
	f := newFixture()
	f.renderer.result = renderResult{err: &RenderError{Reason: ReasonBufferConstraints, Err: errors.New("size mismatch")}}
	s := f.push(t, f.outA, f.wsX)

	var batch Batch
	f.sched.ScanWorkspace(f.queue, f.wsX, f.outA, NewActiveSet(), &batch)
	f.loop.DispatchIdle()

	if s.State() != StateFailed || s.Reason() != ReasonBufferConstraints {
		t.Errorf("State() = %v, Reason() = %v", s.State(), s.Reason())
	}
	if len(f.client.failed) != 1 || f.client.failed[0] != ReasonBufferConstraints {
		t.Errorf("client failures = %v", f.client.failed)
	}
	if f.queue.Len() != 0 {
		t.Error("failed attempt was requeued")
	}
}

func TestPlainErrorFailsUnspec(t *testing.T) {
	f := newFixture()
	s := NewSession(OutputTarget{Output: f.outA}, f.client)
	f.sched.Resolve(Pending{Session: s, Params: newBuffer()}, false, errors.New("boom"))

	if s.Reason() != ReasonUnspec || len(f.client.failed) != 1 {
		t.Errorf("Reason() = %v, failures = %v", s.Reason(), f.client.failed)
	}
}

func TestDeadSessionTaskIsNoop(t *testing.T) {
	for _, damaged := range []bool{true, false} {
		f := newFixture()
		f.renderer.result = renderResult{damaged: damaged}
		s := f.push(t, f.outA, f.wsX)

		var batch Batch
		f.sched.ScanWorkspace(f.queue, f.wsX, f.outA, NewActiveSet(), &batch)
		s.Close()
		f.loop.DispatchIdle()

		if len(f.renderer.workspaces) != 0 {
			t.Error("dead session rendered")
		}
		if f.client.ready != 0 || len(f.client.failed) != 0 || f.queue.Len() != 0 {
			t.Errorf("dead session side effects: client = %+v, queue = %d", f.client, f.queue.Len())
		}
	}
}

func TestSessionClosedDuringRender(t *testing.T) {
	f := newFixture()
	f.renderer.result = renderResult{err: &RenderError{Reason: ReasonUnspec}}
	s := f.push(t, f.outA, f.wsX)
	f.renderer.onRender = s.Close

	var batch Batch
	f.sched.ScanWorkspace(f.queue, f.wsX, f.outA, NewActiveSet(), &batch)
	f.loop.DispatchIdle()

	if len(f.client.failed) != 0 {
		t.Errorf("failure reported for session closed mid render: %v", f.client.failed)
	}
}

func TestScheduleWindow(t *testing.T) {
	f := newFixture()
	win := surface.NewCompositor(nil).CreateSurface()
	q := NewQueue("window")
	s := NewSession(WindowTarget{Surface: win}, f.client)
	_ = q.Push(s, newBuffer())
	_ = q.Push(s, newBuffer())

	f.sched.ScheduleWindow(win, q.Drain())
	if f.loop.Pending() != 2 {
		t.Fatalf("deferred tasks = %d, want 2", f.loop.Pending())
	}

	f.renderer.result = renderResult{damaged: false}
	f.loop.DispatchIdle()
	if f.renderer.windows != 2 {
		t.Errorf("RenderWindow called %d times, want 2", f.renderer.windows)
	}
	if q.Len() != 2 {
		t.Errorf("window queue Len() = %d after no damage, want 2", q.Len())
	}
}

func TestScanWorkspaceRejectsForeignSessionType(t *testing.T) {
	f := newFixture()
	s := NewSession(OutputTarget{Output: f.outA}, nil)
	_ = f.queue.Push(s, newBuffer())

	defer func() {
		if recover() == nil {
			t.Error("ScanWorkspace() did not panic on an output session")
		}
	}()
	var batch Batch
	f.sched.ScanWorkspace(f.queue, f.wsX, f.outA, NewActiveSet(), &batch)
}

func TestBatchDrain(t *testing.T) {
	var b Batch
	b.Drain(NewQueue("empty"))
	if b.IsSet() || b.Len() != 0 {
		t.Errorf("IsSet() = %v, Len() = %d; want false, 0", b.IsSet(), b.Len())
	}

	f := newFixture()
	s := NewSession(OutputTarget{Output: f.outA}, nil)
	q := NewQueue("A")
	_ = q.Push(s, newBuffer())
	b.Drain(q)
	if b.Len() != 1 || s.State() != StateScheduled || q.Len() != 0 {
		t.Errorf("Len() = %d, State() = %v, queue Len() = %d", b.Len(), s.State(), q.Len())
	}
}
