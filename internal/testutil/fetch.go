package testutil

import (
	"context"
	"sync"

	"github.com/roach88/polycache/internal/querysql"
)

// FetchRecorder is a fetch collaborator double that returns a canned result
// and records every call.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FetchRecorder[R any] struct {
	mu     sync.Mutex
	result R
	err    error
	calls  []querysql.Args
}

// NewFetchRecorder returns a recorder that answers every call with result.
func NewFetchRecorder[R any](result R) *FetchRecorder[R] {
	return &FetchRecorder[R]{result: result}
}

// FailWith makes subsequent calls return err instead of the result.
func (f *FetchRecorder[R]) FailWith(err error) *FetchRecorder[R] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	return f
}

// Fetch records args and returns the canned result.
func (f *FetchRecorder[R]) Fetch(_ context.Context, args querysql.Args) (R, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, args)
	if f.err != nil {
		var zero R
		return zero, f.err
	}
	return f.result, nil
}

// Calls returns how many times Fetch ran.
func (f *FetchRecorder[R]) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// LastArgs returns the args of the most recent call, or nil.
func (f *FetchRecorder[R]) LastArgs() querysql.Args {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}
