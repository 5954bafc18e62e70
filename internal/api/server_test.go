package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"plstream-engine/internal/classifier"
	"plstream-engine/internal/engine"
	"plstream-engine/internal/types"
	"plstream-engine/internal/wordvec"
)

type noopTrainer struct{}

func (noopTrainer) FitNew(corpus [][]string) error    { return nil }
func (noopTrainer) FitUpdate(corpus [][]string) error { return nil }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	m, err := wordvec.FromVectors(wordvec.Options{Dim: 2}, map[string]types.Vector{
		"love": {1, 0}, "worst": {0, 1},
		"great": {1, 0}, "wonderful": {0.9, 0.1}, "awful": {0, 1},
	})
	if err != nil {
		t.Fatalf("FromVectors failed: %v", err)
	}
	pol := classifier.NewPolarity(0.5, true, classifier.NewTrend())
	stream := engine.New(m, pol, engine.Config{BatchSize: 2, Trainer: noopTrainer{}})
	srv := httptest.NewServer(NewServer(stream).Router())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
	return resp, out
}

func TestClassifyEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, out := postJSON(t, srv.URL+"/classify", ClassifyRequest{Text: "a great wonderful film"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if out["label"].(float64) != 1 {
		t.Errorf("label = %v, want 1", out["label"])
	}
}

func TestIngestEndpointBatches(t *testing.T) {
	srv := newTestServer(t)

	resp, out := postJSON(t, srv.URL+"/ingest", IngestRequest{Label: 1, Text: "great great"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if out["state"] != "BATCHING" {
		t.Errorf("state = %v, want BATCHING", out["state"])
	}

	_, out = postJSON(t, srv.URL+"/ingest", IngestRequest{Label: 0, Text: "awful awful"})
	if out["state"] != "PROCESSED" {
		t.Errorf("state = %v, want PROCESSED", out["state"])
	}
	if out["report"] == nil {
		t.Error("completed batch should include a report")
	}
}

func TestIngestEndpointValidation(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := postJSON(t, srv.URL+"/ingest", IngestRequest{Label: 7, Text: "hm"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad label status = %d, want 400", resp.StatusCode)
	}

	resp, _ = postJSON(t, srv.URL+"/ingest", IngestRequest{Label: 1})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty text status = %d, want 400", resp.StatusCode)
	}
}

func TestNeighborsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, out := postJSON(t, srv.URL+"/neighbors", NeighborsRequest{Word: "great", K: 2})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	hits := out["neighbors"].([]any)
	if len(hits) != 2 {
		t.Errorf("len(neighbors) = %d, want 2", len(hits))
	}

	resp, _ = postJSON(t, srv.URL+"/neighbors", NeighborsRequest{Word: "zyzzyva"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown word status = %d, want 404", resp.StatusCode)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	srv := newTestServer(t)

	postJSON(t, srv.URL+"/ingest", IngestRequest{Label: 1, Text: "great great"})
	postJSON(t, srv.URL+"/ingest", IngestRequest{Label: 0, Text: "awful awful"})

	resp, err := http.Get(srv.URL + "/history")
	if err != nil {
		t.Fatalf("GET /history failed: %v", err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if out["batches_done"].(float64) != 1 {
		t.Errorf("batches_done = %v, want 1", out["batches_done"])
	}
	if len(out["accuracy"].([]any)) != 1 {
		t.Errorf("accuracy history = %v, want one entry", out["accuracy"])
	}
}
