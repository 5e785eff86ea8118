package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/beds"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/schedule"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/triage"
)

type captured struct {
	auth string
	req  completionRequest
}

func newServer(t *testing.T, status int, body string) (*httptest.Server, *captured, *atomic.Int32) {
	t.Helper()
	got := &captured{}
	calls := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		got.auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got.req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, got, calls
}

const okBody = `{"choices":[{"message":{"role":"assistant","content":"All critical patients are near the entrance."}}]}`

func testClient(url string) *Client {
	return New(Config{BaseURL: url, APIKey: "secret", Model: "test-model"}, zerolog.Nop())
}

func sampleAllocations(t *testing.T) []beds.Allocation {
	t.Helper()
	out, err := beds.AllocateBeds([]triage.ScoredPatient{
		{PatientID: "1", Severity: 0.9},
		{PatientID: "2", Severity: 0.4},
	}, 1)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestNew_DisabledWithoutURL(t *testing.T) {
	c := New(Config{}, zerolog.Nop())
	if c != nil {
		t.Fatal("expected nil client")
	}
	if _, err := c.BedSummary(context.Background(), sampleAllocations(t), 2); !errors.Is(err, ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
}

func TestBedSummary(t *testing.T) {
	srv, got, _ := newServer(t, http.StatusOK, okBody)

	text, err := testClient(srv.URL).BedSummary(context.Background(), sampleAllocations(t), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "All critical patients are near the entrance." {
		t.Errorf("unexpected text %q", text)
	}
	if got.auth != "Bearer secret" {
		t.Errorf("unexpected auth header %q", got.auth)
	}
	if got.req.Model != "test-model" || got.req.MaxTokens != 500 || len(got.req.Messages) != 2 {
		t.Errorf("unexpected request %+v", got.req)
	}
	prompt := got.req.Messages[1].Content
	for _, want := range []string{"2 patients, 1 with a bed", "Bed-0-0", "None (distance n/a)"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestScheduleSummary_InfeasibleSkipsService(t *testing.T) {
	srv, _, calls := newServer(t, http.StatusOK, okBody)

	text, err := testClient(srv.URL).ScheduleSummary(context.Background(), schedule.Result{Infeasible: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != NoScheduleMessage {
		t.Errorf("unexpected text %q", text)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no service calls, got %d", calls.Load())
	}
}

func TestScheduleSummary(t *testing.T) {
	srv, got, _ := newServer(t, http.StatusOK, okBody)
	res := schedule.BuildSchedule([]triage.ScoredPatient{{PatientID: "7", Severity: 0.8}})

	if _, err := testClient(srv.URL).ScheduleSummary(context.Background(), res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got.req.Messages[1].Content, "Dr. A in Room 1 at 9 AM") {
		t.Errorf("prompt missing the slot:\n%s", got.req.Messages[1].Content)
	}
}

func TestSummarize_Dispatch(t *testing.T) {
	srv, got, calls := newServer(t, http.StatusOK, okBody)
	c := testClient(srv.URL)
	ctx := context.Background()

	text, err := c.Summarize(ctx, nil, schedule.Result{}, 0)
	if err != nil || text != NoDataMessage {
		t.Errorf("empty input: %q, %v", text, err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no calls for empty input")
	}

	if _, err := c.Summarize(ctx, sampleAllocations(t), schedule.Result{Infeasible: true}, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.req.MaxTokens != 800 {
		t.Errorf("expected the combined summary, got max_tokens %d", got.req.MaxTokens)
	}
	if !strings.Contains(got.req.Messages[1].Content, "no feasible schedule") {
		t.Errorf("combined prompt should mention the infeasible schedule:\n%s", got.req.Messages[1].Content)
	}
}

func TestComplete_ServiceError(t *testing.T) {
	srv, _, _ := newServer(t, http.StatusUnauthorized, `{"error":{"message":"invalid api key","type":"auth"}}`)

	_, err := testClient(srv.URL).BedSummary(context.Background(), sampleAllocations(t), 2)
	if err == nil || !strings.Contains(err.Error(), "invalid api key") || !strings.Contains(err.Error(), "401") {
		t.Errorf("expected a service error, got %v", err)
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	srv, _, _ := newServer(t, http.StatusOK, `{"choices":[]}`)

	if _, err := testClient(srv.URL).BedSummary(context.Background(), sampleAllocations(t), 2); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}
