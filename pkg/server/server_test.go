package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	cectx "github.com/easyops/contextengine/pkg/context"
	"github.com/easyops/contextengine/pkg/otel"
	"github.com/easyops/contextengine/pkg/server"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type problemBody struct {
	Status int    `json:"status"`
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

type assembleBody struct {
	ContextXML      string             `json:"contextXml"`
	Sources         []cectx.Source     `json:"sources"`
	RelevanceScores map[string]float64 `json:"relevanceScores"`
	TokenCount      int                `json:"tokenCount"`
	Budget          cectx.TokenBudget  `json:"budget"`
	Fingerprint     string             `json:"fingerprint"`
}

func newAssembler(r cectx.Retriever) *cectx.Assembler {
	cfg := cectx.NewConfig(cectx.WithTokenCounter(cectx.NewEstimatedCounter()))
	return cectx.NewAssembler(r, cectx.WithConfig(cfg))
}

func newTestServer(r cectx.Retriever, opts ...server.Option) *server.Server {
	return server.New(newAssembler(r), opts...)
}

func sampleRetriever() cectx.Retriever {
	return cectx.NewStaticRetriever([]cectx.CandidateItem{
		cectx.NewCandidateItem("g1", cectx.ItemTypeGoal, "Ship v2"),
		cectx.NewCandidateItem("d1", cectx.ItemTypeDocument, "Release checklist", cectx.WithProject("p1")),
	})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) problemBody {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/problem+json") {
		t.Errorf("Content-Type = %q, want application/problem+json", ct)
	}
	var p problemBody
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	return p
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(sampleRetriever()).Handler(), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestAssemble_OK(t *testing.T) {
	h := newTestServer(sampleRetriever()).Handler()

	rec := do(t, h, http.MethodPost, "/v1/context/assemble", `{"query":"what next","projectId":"p1","maxTokens":1000}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body assembleBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Sources) != 2 || body.Sources[0].ID != "g1" || body.Sources[1].ID != "d1" {
		t.Errorf("sources = %+v", body.Sources)
	}
	if body.Budget.Total.Allocated != 1000 {
		t.Errorf("budget total = %d, want 1000", body.Budget.Total.Allocated)
	}
	if !strings.Contains(body.ContextXML, "<project>") || body.Fingerprint == "" {
		t.Errorf("unexpected body: %+v", body)
	}
	if len(body.RelevanceScores) != 2 {
		t.Errorf("relevanceScores = %v", body.RelevanceScores)
	}
}

func TestAssemble_DefaultMaxTokens(t *testing.T) {
	h := newTestServer(sampleRetriever(), server.WithDefaultMaxTokens(500)).Handler()

	rec := do(t, h, http.MethodPost, "/v1/context/assemble", `{"query":"q"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body assembleBody
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Budget.Total.Allocated != 500 {
		t.Errorf("budget total = %d, want default 500", body.Budget.Total.Allocated)
	}
}

func TestAssemble_InvalidBudget(t *testing.T) {
	h := newTestServer(sampleRetriever()).Handler()

	for _, payload := range []string{`{"query":"q","maxTokens":0}`, `{"query":"q","maxTokens":-3}`} {
		rec := do(t, h, http.MethodPost, "/v1/context/assemble", payload)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", payload, rec.Code)
		}
		if p := decodeProblem(t, rec); p.Code != "invalid_budget" || p.Status != http.StatusBadRequest {
			t.Errorf("%s: problem = %+v", payload, p)
		}
	}
}

func TestAssemble_BadJSON(t *testing.T) {
	rec := do(t, newTestServer(sampleRetriever()).Handler(), http.MethodPost, "/v1/context/assemble", `{"query":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if p := decodeProblem(t, rec); p.Code != "invalid_request" {
		t.Errorf("problem = %+v", p)
	}
}

func TestAssemble_RetrievalFailure(t *testing.T) {
	failing := cectx.RetrieverFunc(func(context.Context, cectx.RetrievalRequest) ([]cectx.CandidateItem, error) {
		return nil, errors.New("graph offline")
	})
	metrics := otel.NewInMemoryMetrics()
	h := newTestServer(failing, server.WithMetrics(metrics)).Handler()

	rec := do(t, h, http.MethodPost, "/v1/context/assemble", `{"query":"q","maxTokens":1000}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if p := decodeProblem(t, rec); p.Code != "retrieval_failed" {
		t.Errorf("problem = %+v", p)
	}

	if got := metrics.GetCounterValueWith(otel.MetricHTTPRequests, otel.NewAttr(otel.AttrHTTPStatus, http.StatusBadGateway)); got != 1 {
		t.Errorf("http request counter for 502 = %d, want 1", got)
	}
}

func TestBudget(t *testing.T) {
	h := newTestServer(sampleRetriever()).Handler()

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantTotal  int
	}{
		{"explicit", "/v1/context/budget?maxTokens=1000", http.StatusOK, 1000},
		{"default", "/v1/context/budget", http.StatusOK, cectx.DefaultMaxTokens},
		{"zero", "/v1/context/budget?maxTokens=0", http.StatusBadRequest, 0},
		{"not a number", "/v1/context/budget?maxTokens=lots", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target, "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var b cectx.TokenBudget
			if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if b.Total.Allocated != tt.wantTotal {
				t.Errorf("total = %d, want %d", b.Total.Allocated, tt.wantTotal)
			}
			if b.Identity.Allocated+b.Project.Allocated+b.Other.Allocated != tt.wantTotal {
				t.Errorf("categories do not sum to total: %+v", b)
			}
		})
	}
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(sampleRetriever(), server.WithAddr("127.0.0.1:0"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned %v", err)
	}
}
