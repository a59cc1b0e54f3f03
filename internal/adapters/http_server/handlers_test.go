package httpserver

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"
)

func multipartUpload(t *testing.T, filename, body string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(body)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestUploadCSV_RejectsNonCSVFilename(t *testing.T) {
	body, ctype := multipartUpload(t, "bookings.txt", "hotel_id,room_id\n")
	req := httptest.NewRequest("POST", "/v1/ingestion/csv", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()

	h := &Handlers{}
	h.uploadCSV(rec, req)

	if rec.Code != 400 {
		t.Fatalf("expected 400 for non-CSV filename, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/problem+json" {
		t.Fatalf("unexpected content type %q", got)
	}
}

func TestUploadCSV_MissingFileField(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("note", "no file here")
	mw.Close()

	req := httptest.NewRequest("POST", "/v1/ingestion/csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	h := &Handlers{}
	h.uploadCSV(rec, req)

	if rec.Code != 400 {
		t.Fatalf("expected 400 when file field is absent, got %d", rec.Code)
	}
}
