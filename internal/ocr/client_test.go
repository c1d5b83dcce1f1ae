package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func pngDataURL() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("fake png bytes"))
}

func TestRecognize(t *testing.T) {
	var gotPSM int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req recognizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotPSM = req.PSM
		_ = json.NewEncoder(w).Encode(recognizeResponse{Text: "  SUGAR, SALT, PALM OIL \n"})
	}))
	defer server.Close()

	client, err := NewClient(Config{Endpoint: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	text, err := client.Recognize(context.Background(), pngDataURL(), PSMSparseText)
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if text != "SUGAR, SALT, PALM OIL" {
		t.Fatalf("unexpected text %q", text)
	}
	if gotPSM != PSMSparseText {
		t.Fatalf("expected psm %d got %d", PSMSparseText, gotPSM)
	}
}

func TestRecognizeInvalidImage(t *testing.T) {
	client, err := NewClient(Config{Endpoint: "http://127.0.0.1:0"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	inputs := []string{
		"",
		"not a data url",
		"data:text/plain;base64,aGVsbG8=",
		"data:image/png;base64,!!!not-base64!!!",
		"data:image/png;base64,",
	}
	for _, input := range inputs {
		if _, err := client.Recognize(context.Background(), input, PSMSingleBlock); !errors.Is(err, ErrInvalidImage) {
			t.Fatalf("expected ErrInvalidImage for %q, got %v", input, err)
		}
	}
}

func TestRecognizeServiceFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(Config{Endpoint: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Recognize(context.Background(), pngDataURL(), PSMSingleBlock); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestNormalizePSM(t *testing.T) {
	tests := []struct{ in, out int }{
		{6, PSMSingleBlock},
		{11, PSMSparseText},
		{0, PSMSingleBlock},
		{3, PSMSingleBlock},
		{-1, PSMSingleBlock},
	}
	for _, tc := range tests {
		if got := NormalizePSM(tc.in); got != tc.out {
			t.Fatalf("NormalizePSM(%d) = %d, want %d", tc.in, got, tc.out)
		}
	}
}
