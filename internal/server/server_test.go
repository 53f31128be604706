package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"studyrag/internal/adapter/embedding"
	"studyrag/internal/adapter/registry"
	"studyrag/internal/adapter/store"
	"studyrag/internal/domain"
	"studyrag/internal/usecase"
)

type fakeLLM struct {
	answer string
	err    error
}

func (f *fakeLLM) Generate(_ context.Context, prompt string) (string, error) {
	return f.answer, f.err
}

func (f *fakeLLM) ModelName() string { return "fake" }

// newTestServer builds a server with one indexed course, GEO101.
func newTestServer(t *testing.T, model *fakeLLM) *Server {
	t.Helper()

	tmp := t.TempDir()
	notesDir := filepath.Join(tmp, "notes")
	indexDir := filepath.Join(tmp, "index")
	reg := registry.New(notesDir, indexDir, nil)

	if err := os.MkdirAll(reg.NotesPath("GEO101"), 0755); err != nil {
		t.Fatal(err)
	}

	embedder := embedding.NewMockEmbedder(8)
	text := "Paris is the capital of France."
	vectors, err := embedder.Embed(context.Background(), []string{text})
	if err != nil {
		t.Fatal(err)
	}
	vs := store.New(8)
	if err := vs.Add([]domain.Chunk{{Text: text, SourceFile: "geo.txt"}}, vectors); err != nil {
		t.Fatal(err)
	}
	if err := vs.Save(reg.IndexPrefix("GEO101")); err != nil {
		t.Fatal(err)
	}

	answerUC := usecase.NewAnswerUseCase(embedder, model, reg, 3, 128000, 500, nil)
	return New(answerUC, reg, "GEO101", nil)
}

func doRequest(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestAskSuccess(t *testing.T) {
	s := newTestServer(t, &fakeLLM{answer: "Paris."})

	w := doRequest(t, s, http.MethodGet, "/ask?q=What+is+the+capital+of+France%3F&course=GEO101")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp askResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Answer != "Paris." {
		t.Errorf("unexpected answer: %q", resp.Answer)
	}
	if resp.Course != "GEO101" {
		t.Errorf("unexpected course: %q", resp.Course)
	}
}

func TestAskDefaultCourse(t *testing.T) {
	s := newTestServer(t, &fakeLLM{answer: "Paris."})

	w := doRequest(t, s, http.MethodGet, "/ask?q=capital%3F")
	if w.Code != http.StatusOK {
		t.Fatalf("expected default course to apply, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAskEmptyQuestion(t *testing.T) {
	s := newTestServer(t, &fakeLLM{})

	w := doRequest(t, s, http.MethodGet, "/ask?course=GEO101")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAskUnbuiltCourse(t *testing.T) {
	s := newTestServer(t, &fakeLLM{})

	w := doRequest(t, s, http.MethodGet, "/ask?q=anything&course=NOPE404")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 for an unbuilt course, got %d", w.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Error, "not initialized") {
		t.Errorf("expected a readable message, got %q", resp.Error)
	}
}

func TestAskUpstreamError(t *testing.T) {
	s := newTestServer(t, &fakeLLM{err: errors.New("model exploded")})

	w := doRequest(t, s, http.MethodGet, "/ask?q=anything&course=GEO101")
	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}
}

func TestListCourses(t *testing.T) {
	s := newTestServer(t, &fakeLLM{})

	w := doRequest(t, s, http.MethodGet, "/courses")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp coursesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.DefaultCourse != "GEO101" {
		t.Errorf("unexpected default: %s", resp.DefaultCourse)
	}
	if len(resp.AvailableCourses) != 1 || resp.AvailableCourses[0].CourseCode != "GEO101" {
		t.Errorf("unexpected courses: %+v", resp.AvailableCourses)
	}
	if !resp.AvailableCourses[0].Indexed {
		t.Error("expected GEO101 to report as indexed")
	}
}

func TestCourseInfo(t *testing.T) {
	s := newTestServer(t, &fakeLLM{})

	w := doRequest(t, s, http.MethodGet, "/courses/geo101")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var info domain.CourseInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info.CourseCode != "GEO101" {
		t.Errorf("expected normalized code, got %s", info.CourseCode)
	}
	if !info.Indexed {
		t.Error("expected indexed course")
	}
}

func TestReloadCourse(t *testing.T) {
	s := newTestServer(t, &fakeLLM{})

	w := doRequest(t, s, http.MethodPost, "/courses/GEO101/reload")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp reloadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Chunks != 1 {
		t.Errorf("unexpected reload response: %+v", resp)
	}
}

func TestReloadMissingCourse(t *testing.T) {
	s := newTestServer(t, &fakeLLM{})

	w := doRequest(t, s, http.MethodPost, "/courses/NOPE404/reload")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &fakeLLM{})

	w := doRequest(t, s, http.MethodGet, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ok") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}
