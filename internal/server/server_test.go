package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Bergam0t/ciw-example-animation/internal/citation"
	"github.com/Bergam0t/ciw-example-animation/internal/config"
	"github.com/Bergam0t/ciw-example-animation/internal/storage"
)

const testCFF = `cff-version: 1.2.0
message: If you use this software, please cite it as below.
title: Urgent care call centre simulation
type: software
authors:
  - family-names: Monks
    given-names: Thomas
version: 2.1.0
date-released: "2024-02-01"
license: MIT
repository-code: https://github.com/Bergam0t/ciw-example-animation
`

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	cit, err := citation.Parse([]byte(testCFF))
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Replications = 2
	cfg.RateLimit = 1000
	cfg.RateBurst = 1000

	srv := New(&cfg, store, zerolog.Nop(), cit)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

func createRun(t *testing.T, ts *httptest.Server, body string) runResponse {
	t.Helper()

	resp, err := http.Post(ts.URL+"/api/v1/runs", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create run status = %d", resp.StatusCode)
	}

	var run runResponse
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		t.Fatal(err)
	}
	return run
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestCreateRun(t *testing.T) {
	_, ts := newTestServer(t)

	run := createRun(t, ts, `{"n_operators": 5, "replications": 2}`)

	if run.ID == "" {
		t.Error("run ID is empty")
	}
	if run.Experiment.NOperators != 5 {
		t.Errorf("n_operators = %d, want 5", run.Experiment.NOperators)
	}
	if run.Experiment.NNurses != 9 {
		t.Errorf("n_nurses = %d, want default 9", run.Experiment.NNurses)
	}
	if run.Reps != 2 {
		t.Errorf("reps = %d, want 2", run.Reps)
	}
	if len(run.Summary) != 4 {
		t.Errorf("summary has %d rows, want 4", len(run.Summary))
	}
}

func TestCreateRunRejectsInvalid(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed JSON", `{`, http.StatusBadRequest},
		{"zero operators", `{"n_operators": 0}`, http.StatusUnprocessableEntity},
		{"bad callback", `{"chance_callback": 1.5}`, http.StatusUnprocessableEntity},
		{"zero replications", `{"replications": 0}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/v1/runs", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestGetRun(t *testing.T) {
	_, ts := newTestServer(t)
	created := createRun(t, ts, `{"replications": 2}`)

	resp, err := http.Get(ts.URL + "/api/v1/runs/" + created.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var run runResponse
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		t.Fatal(err)
	}
	if run.ID != created.ID {
		t.Errorf("id = %q, want %q", run.ID, created.ID)
	}
	if len(run.Summary) != 4 {
		t.Errorf("summary has %d rows, want 4", len(run.Summary))
	}
}

func TestGetRunNotFound(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/runs/no-such-run")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListRuns(t *testing.T) {
	_, ts := newTestServer(t)
	first := createRun(t, ts, `{"replications": 2}`)
	second := createRun(t, ts, `{"replications": 2}`)

	resp, err := http.Get(ts.URL + "/api/v1/runs")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var runs []runResponse
	if err := json.NewDecoder(resp.Body).Decode(&runs); err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	ids := map[string]bool{runs[0].ID: true, runs[1].ID: true}
	if !ids[first.ID] || !ids[second.ID] {
		t.Errorf("listing missing created runs: %v", runs)
	}
}

func TestDeleteRun(t *testing.T) {
	_, ts := newTestServer(t)
	created := createRun(t, ts, `{"replications": 2}`)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/runs/"+created.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/v1/runs/" + created.ID)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", resp.StatusCode)
	}
}

func TestAnimation(t *testing.T) {
	_, ts := newTestServer(t)
	created := createRun(t, ts, `{"replications": 1}`)

	resp, err := http.Get(ts.URL + "/api/v1/runs/" + created.ID + "/animation")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Plotly.newPlot", "day 1, 00:00"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("animation HTML missing %q", want)
		}
	}
}

func TestAnimationNotFound(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/runs/no-such-run/animation")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCitationFormats(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		query    string
		wantCode int
		wantBody string
	}{
		{"", http.StatusOK, `"cff-version"`},
		{"?format=json", http.StatusOK, `"cff-version"`},
		{"?format=bibtex", http.StatusOK, "@software{Monks_2024"},
		{"?format=apa", http.StatusOK, "Monks, T."},
		{"?format=ris", http.StatusBadRequest, "unknown format"},
	}

	for _, tt := range tests {
		t.Run("format"+tt.query, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/api/v1/citation" + tt.query)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantCode {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantCode)
			}

			var body strings.Builder
			buf := make([]byte, 4096)
			for {
				n, err := resp.Body.Read(buf)
				body.Write(buf[:n])
				if err != nil {
					break
				}
			}
			if !strings.Contains(body.String(), tt.wantBody) {
				t.Errorf("body %q does not contain %q", body.String(), tt.wantBody)
			}
		})
	}
}

func TestCitationMissing(t *testing.T) {
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := config.Default()
	srv := New(&cfg, store, zerolog.Nop(), nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/api/v1/citation")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRateLimit(t *testing.T) {
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := config.Default()
	cfg.RateLimit = 1
	cfg.RateBurst = 1

	srv := New(&cfg, store, zerolog.Nop(), nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	// First request consumes the burst, second must be rejected.
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first request status = %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)
	createRun(t, ts, `{"replications": 2}`)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body strings.Builder
	buf := make([]byte, 16384)
	for {
		n, err := resp.Body.Read(buf)
		body.Write(buf[:n])
		if err != nil {
			break
		}
	}
	for _, metric := range []string{"callsim_simulations_total 1", "callsim_replications_total 2"} {
		if !strings.Contains(body.String(), metric) {
			t.Errorf("metrics output missing %q", metric)
		}
	}
}
