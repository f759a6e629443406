package ai

import (
	"errors"
	"testing"

	"github.com/davem/rfpdesk/internal/models"
)

func TestUnmarshalModelJSONCleanOutput(t *testing.T) {
	raw := `{"price": 1200, "delivery_days": 15, "warranty": 2, "items": [{"name": "Chair", "quantity": 10}]}`

	var data models.ExtractedData
	if err := unmarshalModelJSON(raw, &data); err != nil {
		t.Fatal(err)
	}
	if data.Price != float64(1200) {
		t.Errorf("price = %v", data.Price)
	}
}

func TestUnmarshalModelJSONMarkdownFences(t *testing.T) {
	raw := "```json\n{\"price\": 500}\n```"

	var data models.ExtractedData
	if err := unmarshalModelJSON(raw, &data); err != nil {
		t.Fatal(err)
	}
	if data.Price != float64(500) {
		t.Errorf("price = %v", data.Price)
	}
}

func TestUnmarshalModelJSONChatterAroundObject(t *testing.T) {
	raw := `Here is the extracted data: {"price": "900", "warranty": 1} hope that helps!`

	var data models.ExtractedData
	if err := unmarshalModelJSON(raw, &data); err != nil {
		t.Fatal(err)
	}
	if data.Price != "900" {
		t.Errorf("price = %v", data.Price)
	}
}

func TestUnmarshalModelJSONTrailingCommaCleanup(t *testing.T) {
	raw := "{\n\t\"price\": 700,\n\t\"delivery_days\": 10,\n}"

	var data models.ExtractedData
	if err := unmarshalModelJSON(raw, &data); err != nil {
		t.Fatalf("cleanup pass should have repaired trailing comma: %v", err)
	}
	if data.DeliveryDays != float64(10) {
		t.Errorf("delivery_days = %v", data.DeliveryDays)
	}
}

func TestUnmarshalModelJSONInvalidFormat(t *testing.T) {
	raw := "I could not find any pricing information in that email."

	var data models.ExtractedData
	err := unmarshalModelJSON(raw, &data)
	if err == nil {
		t.Fatal("expected error for non-JSON output")
	}

	var malformed *MalformedOutputError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedOutputError, got %T", err)
	}
	if malformed.Raw != raw {
		t.Error("error must carry the raw model output for diagnostics")
	}
}

func TestExtractFirstJSONObjectNestedBraces(t *testing.T) {
	s := `prefix {"a": {"b": "}"}, "c": 1} suffix`
	got, ok := extractFirstJSONObject(s)
	if !ok {
		t.Fatal("expected an object")
	}
	want := `{"a": {"b": "}"}, "c": 1}`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
