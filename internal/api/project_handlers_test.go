package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"demoshelf/internal/library"
)

func TestProjectsCollection(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/projects", jsonBody(t, createProjectRequest{Name: "Demo A", Note: "rough cuts"}))
	handler.Projects(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var created library.Project
	decodeBody(t, rec, &created)
	if created.Name != "Demo A" {
		t.Fatalf("created = %+v", created)
	}

	rec = httptest.NewRecorder()
	handler.Projects(rec, httptest.NewRequest("POST", "/api/projects", jsonBody(t, createProjectRequest{Name: "Demo A"})))
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Projects(rec, httptest.NewRequest("POST", "/api/projects", jsonBody(t, createProjectRequest{Name: "   "})))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank name status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Projects(rec, httptest.NewRequest("POST", "/api/projects", strings.NewReader(`{"name": "x", "bogus": true}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Projects(rec, httptest.NewRequest("GET", "/api/projects", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	var projects []library.Project
	decodeBody(t, rec, &projects)
	if len(projects) != 1 || projects[0].Name != "Demo A" {
		t.Fatalf("projects = %+v", projects)
	}
}

func TestProjectResource(t *testing.T) {
	handler := newTestHandler(t)
	if _, err := handler.Library.CreateProject("Old", ""); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/api/projects/Old", jsonBody(t, renameRequest{Name: "New"}))
	handler.ProjectByName(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("rename status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var renamed library.Project
	decodeBody(t, rec, &renamed)
	if renamed.Name != "New" {
		t.Fatalf("renamed = %+v", renamed)
	}

	rec = httptest.NewRecorder()
	handler.ProjectByName(rec, httptest.NewRequest("DELETE", "/api/projects/New", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ProjectByName(rec, httptest.NewRequest("DELETE", "/api/projects/New", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func TestDeleteProjectWithDemosRefused(t *testing.T) {
	handler := newTestHandler(t)
	if _, err := handler.Library.CreateProject("Busy", ""); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if _, _, err := handler.Library.SaveDemo("Busy", "track.wav", strings.NewReader("x")); err != nil {
		t.Fatalf("SaveDemo: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ProjectByName(rec, httptest.NewRequest("DELETE", "/api/projects/Busy", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), library.ErrHasDemos.Error()) {
		t.Fatalf("body = %q, want has-demos error", rec.Body.String())
	}
}

func TestDemoResource(t *testing.T) {
	handler := newTestHandler(t)
	if _, _, err := handler.Library.SaveDemo("mix", "take1.wav", strings.NewReader("x")); err != nil {
		t.Fatalf("SaveDemo: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/api/projects/mix/demos/take1.wav", jsonBody(t, renameRequest{Name: "final"}))
	handler.ProjectByName(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("rename status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var renamed map[string]string
	decodeBody(t, rec, &renamed)
	if renamed["filename"] != "final.wav" {
		t.Fatalf("renamed = %v, want final.wav", renamed)
	}

	rec = httptest.NewRecorder()
	handler.ProjectByName(rec, httptest.NewRequest("GET", "/api/projects/mix/demos", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	var demos []library.Demo
	decodeBody(t, rec, &demos)
	if len(demos) != 1 || demos[0].Filename != "final.wav" || demos[0].DisplayName != "final" {
		t.Fatalf("demos = %+v", demos)
	}

	rec = httptest.NewRecorder()
	handler.ProjectByName(rec, httptest.NewRequest("DELETE", "/api/projects/mix/demos/final.wav", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ProjectByName(rec, httptest.NewRequest("DELETE", "/api/projects/mix/demos/final.wav", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestUploadDemo(t *testing.T) {
	handler := newTestHandler(t)

	body, contentType := multipartBody(t, "file", "track.wav", "RIFFcontent")
	req := httptest.NewRequest("POST", "/api/projects/mix/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ProjectByName(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var resp uploadResponse
	decodeBody(t, rec, &resp)
	if resp.Filename != "track.wav" || resp.SizeBytes != int64(len("RIFFcontent")) {
		t.Fatalf("response = %+v", resp)
	}

	demos, err := handler.Library.ListDemos("mix")
	if err != nil || len(demos) != 1 {
		t.Fatalf("ListDemos = (%v, %v), want one demo", demos, err)
	}
}

func TestUploadDemoRejectsNonWav(t *testing.T) {
	handler := newTestHandler(t)

	body, contentType := multipartBody(t, "file", "track.mp3", "ID3content")
	req := httptest.NewRequest("POST", "/api/projects/mix/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ProjectByName(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUploadDemoRequiresFileField(t *testing.T) {
	handler := newTestHandler(t)

	body, contentType := multipartBody(t, "attachment", "track.wav", "RIFFcontent")
	req := httptest.NewRequest("POST", "/api/projects/mix/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.ProjectByName(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "file field is required") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestUploadDemoRejectsNonMultipart(t *testing.T) {
	handler := newTestHandler(t)
	req := httptest.NewRequest("POST", "/api/projects/mix/upload", strings.NewReader("not multipart"))
	rec := httptest.NewRecorder()
	handler.ProjectByName(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestProjectByNameRouting(t *testing.T) {
	handler := newTestHandler(t)
	cases := []struct {
		name string
		path string
	}{
		{name: "empty name", path: "/api/projects/"},
		{name: "unknown sub-resource", path: "/api/projects/mix/bogus"},
		{name: "too deep", path: "/api/projects/mix/demos/a/b"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ProjectByName(rec, httptest.NewRequest("GET", tc.path, nil))
			if rec.Code != http.StatusNotFound {
				t.Fatalf("status = %d, want 404", rec.Code)
			}
		})
	}
}

func TestTraversalProjectNameRejected(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/api/projects/x", nil)
	req.URL.Path = "/api/projects/.."
	handler.ProjectByName(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("delete status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), library.ErrInvalidPath.Error()) {
		t.Fatalf("body = %q, want invalid path error", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest("DELETE", "/api/projects/x", nil)
	req.URL.Path = "/api/projects/mix/demos/.."
	handler.ProjectByName(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("demo delete status = %d, want 400", rec.Code)
	}
}
