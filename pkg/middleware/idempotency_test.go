package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newIdempotencyHandler(t *testing.T, calls *int32, status int) (http.Handler, *InMemoryIdempotencyStore) {
	t.Helper()
	store := NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(store.Stop)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		time.Sleep(20 * time.Millisecond)
		w.WriteHeader(status)
		_, _ = w.Write([]byte("response body"))
	})

	return Idempotency(store, "Idempotency-Key")(inner), store
}

func TestIdempotency_NoKeyPassesThrough(t *testing.T) {
	var calls int32
	handler, _ := newIdempotencyHandler(t, &calls, http.StatusOK)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected 2 executions without a key, got %d", got)
	}
}

func TestIdempotency_ReplaysCachedResponse(t *testing.T) {
	var calls int32
	handler, _ := newIdempotencyHandler(t, &calls, http.StatusCreated)

	var bodies []string
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", nil)
		req.Header.Set("Idempotency-Key", "key-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Errorf("request %d: expected status 201, got %d", i, rec.Code)
		}
		bodies = append(bodies, rec.Body.String())
	}

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected 1 execution, got %d", got)
	}
	for i, body := range bodies {
		if body != "response body" {
			t.Errorf("request %d: unexpected body %q", i, body)
		}
	}
}

func TestIdempotency_ConcurrentRequestsExecuteOnce(t *testing.T) {
	var calls int32
	handler, _ := newIdempotencyHandler(t, &calls, http.StatusCreated)

	const workers = 8
	recorders := make([]*httptest.ResponseRecorder, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", nil)
			req.Header.Set("Idempotency-Key", "key-racy")
			recorders[i] = httptest.NewRecorder()
			handler.ServeHTTP(recorders[i], req)
		}(i)
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected exactly 1 execution across concurrent requests, got %d", got)
	}
	for i, rec := range recorders {
		if rec.Code != http.StatusCreated {
			t.Errorf("request %d: expected status 201, got %d", i, rec.Code)
		}
		if rec.Body.String() != "response body" {
			t.Errorf("request %d: unexpected body %q", i, rec.Body.String())
		}
	}
}

func TestIdempotency_FailedResponseNotCached(t *testing.T) {
	var calls int32
	handler, _ := newIdempotencyHandler(t, &calls, http.StatusInternalServerError)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", nil)
		req.Header.Set("Idempotency-Key", "key-err")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected failed responses to re-execute, got %d executions", got)
	}
}
