package billing

import "testing"

func TestItemsCodecPreservesOrderAndSigns(t *testing.T) {
	items := []LineItem{
		{Description: "Rent", Amount: 1000},
		{Description: "Electricity (40.0 units)", Amount: 10},
		{Description: "Payment 2024-03-05 (rent)", Amount: -1000},
	}
	data, err := EncodeItems(items)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeItems(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != len(items) {
		t.Fatalf("len = %d, want %d", len(decoded), len(items))
	}
	for i := range items {
		if decoded[i] != items[i] {
			t.Fatalf("item %d = %+v, want %+v", i, decoded[i], items[i])
		}
	}
}

func TestItemsCodecEmpty(t *testing.T) {
	data, err := EncodeItems(nil)
	if err != nil {
		t.Fatalf("encode nil: %v", err)
	}
	if string(data) != "[]" {
		t.Fatalf("encoded nil = %q, want []", data)
	}
	decoded, err := DecodeItems(nil)
	if err != nil {
		t.Fatalf("decode nil: %v", err)
	}
	if decoded != nil {
		t.Fatalf("decoded = %+v, want nil", decoded)
	}
}

func TestItemsCodecRejectsGarbage(t *testing.T) {
	if _, err := DecodeItems([]byte("{not json")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{StatusPendingReview, StatusApproved, StatusDenied} {
		got, err := ParseStatus(valid)
		if err != nil || got != valid {
			t.Fatalf("ParseStatus(%q) = %q, %v", valid, got, err)
		}
	}
	if _, err := ParseStatus("archived"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
