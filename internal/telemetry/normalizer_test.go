package telemetry

import (
	"encoding/json"
	"testing"
)

func TestNormalize_NestedTokenShape(t *testing.T) {
	raw := []byte(`{"tokens":{"input":10,"output":5,"total":15},"latency":120,"provider":"gemini"}`)

	tel := Normalize(raw, 999)

	if tel.TokensInput != 10 {
		t.Errorf("Expected tokensInput 10, got %d", tel.TokensInput)
	}
	if tel.TokensOutput != 5 {
		t.Errorf("Expected tokensOutput 5, got %d", tel.TokensOutput)
	}
	if tel.TokensTotal != 15 {
		t.Errorf("Expected tokensTotal 15, got %d", tel.TokensTotal)
	}
	if tel.LatencyMs == nil || *tel.LatencyMs != 120 {
		t.Errorf("Expected payload latency 120 to win over measured latency, got %v", tel.LatencyMs)
	}
	if tel.Provider != "gemini" {
		t.Errorf("Expected provider 'gemini', got %q", tel.Provider)
	}
	if tel.Model != "unknown" {
		t.Errorf("Expected default model 'unknown', got %q", tel.Model)
	}
	if tel.MemoriesUsed != 0 {
		t.Errorf("Expected memoriesUsed 0, got %d", tel.MemoriesUsed)
	}
	if len(tel.MemoryDetails) != 0 {
		t.Errorf("Expected empty memoryDetails, got %v", tel.MemoryDetails)
	}
}

func TestNormalize_FlatTokenShape(t *testing.T) {
	raw := []byte(`{"tokensUsed":42}`)

	tel := Normalize(raw, 0)

	if tel.TokensTotal != 42 {
		t.Errorf("Expected tokensTotal 42, got %d", tel.TokensTotal)
	}
	if tel.TokensInput != 0 || tel.TokensOutput != 0 {
		t.Errorf("Expected input/output to default to 0, got %d/%d", tel.TokensInput, tel.TokensOutput)
	}
}

func TestNormalize_NestedShapeWinsOverFlat(t *testing.T) {
	raw := []byte(`{"tokens":{"input":1,"output":2,"total":3},"tokensUsed":42}`)

	tel := Normalize(raw, 0)

	if tel.TokensTotal != 3 {
		t.Errorf("Expected nested total 3 to win, got %d", tel.TokensTotal)
	}
}

func TestNormalize_LatencyFallsBackToMeasured(t *testing.T) {
	raw := []byte(`{"provider":"claude"}`)

	tel := Normalize(raw, 350)

	if tel.LatencyMs == nil || *tel.LatencyMs != 350 {
		t.Errorf("Expected measured latency 350, got %v", tel.LatencyMs)
	}
}

func TestNormalize_LatencyAbsentWhenUnmeasured(t *testing.T) {
	raw := []byte(`{"provider":"claude"}`)

	tel := Normalize(raw, 0)

	if tel.LatencyMs != nil {
		t.Errorf("Expected latency to stay unset, got %v", tel.LatencyMs)
	}
}

func TestNormalize_DebugFields(t *testing.T) {
	raw := []byte(`{
		"provider": "Smart-Router",
		"model": "claude-sonnet",
		"debug": {
			"routingMethod": "keyword",
			"matchedCategory": "coding",
			"usedFallback": true,
			"memoriesUsed": 2,
			"memoryDetails": ["user prefers Go", {"topic": "deadlines", "score": 0.91}]
		}
	}`)

	tel := Normalize(raw, 0)

	if tel.Provider != "smart-router" {
		t.Errorf("Expected lower-cased provider 'smart-router', got %q", tel.Provider)
	}
	if tel.Model != "claude-sonnet" {
		t.Errorf("Expected model 'claude-sonnet', got %q", tel.Model)
	}
	if tel.RoutingMethod != "keyword" {
		t.Errorf("Expected routingMethod 'keyword', got %q", tel.RoutingMethod)
	}
	if tel.MatchedCategory != "coding" {
		t.Errorf("Expected matchedCategory 'coding', got %q", tel.MatchedCategory)
	}
	if !tel.UsedFallback {
		t.Error("Expected usedFallback true")
	}
	if tel.MemoriesUsed != 2 {
		t.Errorf("Expected memoriesUsed 2, got %d", tel.MemoriesUsed)
	}
	if len(tel.MemoryDetails) != 2 {
		t.Fatalf("Expected 2 memory details, got %d", len(tel.MemoryDetails))
	}
	if tel.MemoryDetails[0] != "user prefers Go" {
		t.Errorf("Expected first detail to pass through, got %q", tel.MemoryDetails[0])
	}
	// Non-string entries keep their raw JSON form
	var detail map[string]interface{}
	if err := json.Unmarshal([]byte(tel.MemoryDetails[1]), &detail); err != nil {
		t.Errorf("Expected second detail to be raw JSON, got %q: %v", tel.MemoryDetails[1], err)
	}
}

func TestNormalize_MissingDebugObject(t *testing.T) {
	raw := []byte(`{"provider":"openai"}`)

	tel := Normalize(raw, 0)

	if tel.RoutingMethod != "unknown" {
		t.Errorf("Expected default routingMethod 'unknown', got %q", tel.RoutingMethod)
	}
	if tel.MatchedCategory != "None" {
		t.Errorf("Expected default matchedCategory 'None', got %q", tel.MatchedCategory)
	}
	if tel.UsedFallback {
		t.Error("Expected usedFallback to default to false")
	}
	if tel.MemoriesUsed != 0 {
		t.Errorf("Expected memoriesUsed 0, got %d", tel.MemoriesUsed)
	}
	if tel.MemoryDetails == nil || len(tel.MemoryDetails) != 0 {
		t.Errorf("Expected empty (non-nil) memoryDetails, got %v", tel.MemoryDetails)
	}
}

func TestNormalize_TotalOnGarbage(t *testing.T) {
	payloads := [][]byte{
		nil,
		[]byte(``),
		[]byte(`not json at all`),
		[]byte(`[]`),
		[]byte(`{"tokens":"mistyped","latency":"slow","debug":42}`),
	}

	for _, raw := range payloads {
		tel := Normalize(raw, 100)
		if tel.Model != "unknown" || tel.MatchedCategory != "None" {
			t.Errorf("Expected defaults for payload %q", string(raw))
		}
	}
}

func TestNormalize_RetainsRawPayload(t *testing.T) {
	raw := []byte(`{"response":"hi","tokens":{"total":7},"someVendorField":{"deeply":["nested"]}}`)

	tel := Normalize(raw, 0)

	if string(tel.Raw) != string(raw) {
		t.Errorf("Expected raw payload retained verbatim, got %s", string(tel.Raw))
	}

	// Mutating the input must not reach the retained copy
	raw[2] = 'X'
	if string(tel.Raw) == string(raw) {
		t.Error("Expected retained raw payload to be an independent copy")
	}
}

func TestResponseText(t *testing.T) {
	if got := ResponseText([]byte(`{"response":"hello there"}`)); got != "hello there" {
		t.Errorf("Expected response text, got %q", got)
	}
	if got := ResponseText([]byte(`{}`)); got != "" {
		t.Errorf("Expected empty string for missing response, got %q", got)
	}
	if got := ResponseText([]byte(`garbage`)); got != "" {
		t.Errorf("Expected empty string for malformed payload, got %q", got)
	}
}
