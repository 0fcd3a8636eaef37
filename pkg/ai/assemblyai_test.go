package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/johnquangdev/meeting-enrichment/pkg/config"
)

func newTestAssembly(url string) *AssemblyAIClient {
	return NewAssemblyAIClient(&config.AssemblyAIConfig{
		APIKey:       "test-key",
		BaseURL:      url,
		LanguageCode: "ja",
		MaxElapsed:   time.Second,
	})
}

func TestAssemblySubmit_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST got %s", r.Method)
		}
		if !strings.HasSuffix(r.URL.Path, "/v2/transcript") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if payload["audio_url"] != "http://example.com/audio.mp3" {
			t.Fatalf("unexpected audio_url %v", payload["audio_url"])
		}
		if payload["speaker_labels"] != true {
			t.Fatalf("expected speaker labels to be requested")
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "transcript-123", "status": "queued"})
	}))
	defer ts.Close()

	id, err := newTestAssembly(ts.URL).Submit(context.Background(), "http://example.com/audio.mp3")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if id != "transcript-123" {
		t.Fatalf("unexpected id %s", id)
	}
}

func TestAssemblyCheck(t *testing.T) {
	responses := map[string]interface{}{
		"done": map[string]interface{}{
			"id":     "done",
			"status": "completed",
			"utterances": []map[string]interface{}{
				{"speaker": "A", "start": 400, "end": 1900, "text": "えっと、40分。はい、大丈夫です。"},
				{"speaker": "B", "start": 2000, "end": 3000, "text": "ありがとうございます。"},
			},
		},
		"empty":   map[string]interface{}{"id": "empty", "status": "completed", "utterances": []interface{}{}},
		"broken":  map[string]interface{}{"id": "broken", "status": "error", "error": "audio too short"},
		"running": map[string]interface{}{"id": "running", "status": "processing"},
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		body, ok := responses[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "transcript not found"})
			return
		}
		json.NewEncoder(w).Encode(body)
	}))
	defer ts.Close()

	client := newTestAssembly(ts.URL)
	ctx := context.Background()

	res, err := client.Check(ctx, "done")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if res.State != TranscriptionCompleted || len(res.Utterances) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Utterances[0].Speaker != 1 || res.Utterances[1].Speaker != 2 {
		t.Fatalf("unexpected speakers %+v", res.Utterances)
	}
	if res.Utterances[0].Offset != 0.4 || res.Utterances[1].Offset != 2.0 {
		t.Fatalf("unexpected offsets %+v", res.Utterances)
	}

	cases := map[string]TranscriptionState{
		"empty":   TranscriptionNoResult,
		"broken":  TranscriptionFailed,
		"running": TranscriptionPending,
		"missing": TranscriptionNoResult,
	}
	for id, want := range cases {
		res, err := client.Check(ctx, id)
		if err != nil {
			t.Fatalf("%s: check failed: %v", id, err)
		}
		if res.State != want {
			t.Fatalf("%s: expected %s got %s", id, want, res.State)
		}
	}

	res, _ = client.Check(ctx, "broken")
	if res.Error != "audio too short" {
		t.Fatalf("expected upstream error message, got %q", res.Error)
	}
}

func TestSpeakerNumber(t *testing.T) {
	tests := map[string]int{
		"A":  1,
		"B":  2,
		"z":  26,
		"AA": 27,
		"3":  3,
		"":   0,
		"?":  0,
	}
	for in, want := range tests {
		if got := SpeakerNumber(in); got != want {
			t.Errorf("SpeakerNumber(%q) = %d, want %d", in, got, want)
		}
	}
}
