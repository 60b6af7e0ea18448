package telemetry

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// ResponseTelemetry is the canonical shape every backend response is
// normalized into. Missing or mistyped fields take the documented defaults;
// normalization never fails.
type ResponseTelemetry struct {
	Provider        string          `json:"provider"`
	Model           string          `json:"model"`
	TokensInput     int             `json:"tokensInput"`
	TokensOutput    int             `json:"tokensOutput"`
	TokensTotal     int             `json:"tokensTotal"`
	LatencyMs       *int            `json:"latencyMs,omitempty"`
	RoutingMethod   string          `json:"routingMethod"`
	MatchedCategory string          `json:"matchedCategory"`
	UsedFallback    bool            `json:"usedFallback"`
	MemoriesUsed    int             `json:"memoriesUsed"`
	MemoryDetails   []string        `json:"memoryDetails"`
	Raw             json.RawMessage `json:"raw"`
}

// Normalize maps a raw backend response payload onto ResponseTelemetry.
//
// Token counts prefer the nested tokens.{input,output,total} object; a flat
// tokensUsed field maps onto the total only. Both shapes are emitted by live
// backend versions and both are supported. Latency prefers the payload's own
// latency field and falls back to the controller-measured round trip
// (measuredLatencyMs <= 0 means no measurement). The full raw payload is
// retained verbatim for inspection.
func Normalize(raw []byte, measuredLatencyMs int) ResponseTelemetry {
	tel := ResponseTelemetry{
		Provider:        "unknown",
		Model:           "unknown",
		RoutingMethod:   "unknown",
		MatchedCategory: "None",
		MemoryDetails:   []string{},
		Raw:             append(json.RawMessage(nil), raw...),
	}

	if provider := gjson.GetBytes(raw, "provider"); provider.Exists() {
		tel.Provider = strings.ToLower(provider.String())
	}
	if model := gjson.GetBytes(raw, "model"); model.Exists() {
		tel.Model = model.String()
	}

	if tokens := gjson.GetBytes(raw, "tokens"); tokens.IsObject() {
		tel.TokensInput = int(tokens.Get("input").Int())
		tel.TokensOutput = int(tokens.Get("output").Int())
		tel.TokensTotal = int(tokens.Get("total").Int())
	} else if used := gjson.GetBytes(raw, "tokensUsed"); used.Exists() {
		// Older backend versions report a single flat counter
		tel.TokensTotal = int(used.Int())
	}

	if latency := gjson.GetBytes(raw, "latency"); latency.Exists() {
		ms := int(latency.Int())
		tel.LatencyMs = &ms
	} else if measuredLatencyMs > 0 {
		ms := measuredLatencyMs
		tel.LatencyMs = &ms
	}

	debug := gjson.GetBytes(raw, "debug")
	if method := debug.Get("routingMethod"); method.Exists() {
		tel.RoutingMethod = method.String()
	}
	if category := debug.Get("matchedCategory"); category.Exists() {
		tel.MatchedCategory = category.String()
	}
	tel.UsedFallback = debug.Get("usedFallback").Bool()
	tel.MemoriesUsed = int(debug.Get("memoriesUsed").Int())

	debug.Get("memoryDetails").ForEach(func(_, entry gjson.Result) bool {
		tel.MemoryDetails = append(tel.MemoryDetails, stringifyDetail(entry))
		return true
	})

	return tel
}

// ResponseText extracts the backend's reply text. An absent or mistyped
// response field yields the empty string.
func ResponseText(raw []byte) string {
	return gjson.GetBytes(raw, "response").String()
}

// stringifyDetail renders one memory detail entry for display. Entries are
// opaque: strings pass through, anything else keeps its raw JSON form.
func stringifyDetail(entry gjson.Result) string {
	if entry.Type == gjson.String {
		return entry.String()
	}
	return entry.Raw
}
