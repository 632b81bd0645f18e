// Copyright 2026 The cosmic-comp Authors
// SPDX-License-Identifier: MIT

package eventloop

import (
	"reflect"
	"testing"
)

func TestDispatchIdleOrder(t *testing.T) {
	var l Loop
	var got []int
	for i := 0; i < 3; i++ {
		l.InsertIdle(TaskFunc(func() { got = append(got, i) }))
	}

	if l.Pending() != 3 {
		t.Fatalf("Pending() = %d, want 3", l.Pending())
	}
	if n := l.DispatchIdle(); n != 3 {
		t.Errorf("DispatchIdle() = %d, want 3", n)
	}
	if want := []int{0, 1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	if l.Pending() != 0 {
		t.Errorf("Pending() = %d after dispatch", l.Pending())
	}
}

func TestTaskInsertedDuringDispatchRunsNextTime(t *testing.T) {
	l := New()
	ran := 0
	l.InsertIdle(TaskFunc(func() {
		ran++
		l.InsertIdle(TaskFunc(func() { ran++ }))
	}))

	if n := l.DispatchIdle(); n != 1 {
		t.Fatalf("DispatchIdle() = %d, want 1", n)
	}
	if ran != 1 || l.Pending() != 1 {
		t.Fatalf("ran = %d, pending = %d; want 1, 1", ran, l.Pending())
	}

	if n := l.Drain(); n != 1 {
		t.Errorf("Drain() = %d, want 1", n)
	}
	if ran != 2 {
		t.Errorf("ran = %d, want 2", ran)
	}
}

func TestDispatchIdleEmpty(t *testing.T) {
	var l Loop
	if n := l.DispatchIdle(); n != 0 {
		t.Errorf("DispatchIdle() = %d on empty loop", n)
	}
}
