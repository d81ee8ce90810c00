package record

import "testing"

func TestMarshalCanonical_SortedKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": 1,
		"alpha": 2,
		"mango": 3,
	}

	data, err := MarshalCanonical(obj)
	if err != nil {
		t.Fatalf("MarshalCanonical() failed: %v", err)
	}

	want := `{"alpha":2,"mango":3,"zebra":1}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestMarshalCanonical_NoHTMLEscape(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{"url": "a<b>&c"})
	if err != nil {
		t.Fatalf("MarshalCanonical() failed: %v", err)
	}

	want := `{"url":"a<b>&c"}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestMarshalCanonical_Nested(t *testing.T) {
	obj := map[string]any{
		"b": []any{1, "two", true, nil},
		"a": map[string]any{"y": 1, "x": 2},
	}

	data, err := MarshalCanonical(obj)
	if err != nil {
		t.Fatalf("MarshalCanonical() failed: %v", err)
	}

	want := `{"a":{"x":2,"y":1},"b":[1,"two",true,null]}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestMarshalCanonical_Floats(t *testing.T) {
	// Integral floats collapse to integers (JSON round-trips land here)
	data, err := MarshalCanonical(map[string]any{"n": float64(3)})
	if err != nil {
		t.Fatalf("MarshalCanonical() failed: %v", err)
	}
	if string(data) != `{"n":3}` {
		t.Errorf("got %s, want {\"n\":3}", data)
	}

	data, err = MarshalCanonical(map[string]any{"n": 1.5})
	if err != nil {
		t.Fatalf("MarshalCanonical() failed: %v", err)
	}
	if string(data) != `{"n":1.5}` {
		t.Errorf("got %s, want {\"n\":1.5}", data)
	}
}

func TestMarshalCanonical_NonFiniteFloat(t *testing.T) {
	nan := func() float64 { z := 0.0; return z / z }()
	if _, err := MarshalCanonical(map[string]any{"n": nan}); err == nil {
		t.Error("expected error for NaN, got nil")
	}
}

func TestMarshalCanonical_UnsupportedType(t *testing.T) {
	if _, err := MarshalCanonical(struct{ X int }{1}); err == nil {
		t.Error("expected error for struct, got nil")
	}
}

func TestMarshalCanonical_Null(t *testing.T) {
	data, err := MarshalCanonical(nil)
	if err != nil {
		t.Fatalf("MarshalCanonical(nil) failed: %v", err)
	}
	if string(data) != "null" {
		t.Errorf("got %s, want null", data)
	}
}

func TestMarshalCanonical_StatusAndKind(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{"status": StatusEnter, "kind": KindStep})
	if err != nil {
		t.Fatalf("MarshalCanonical() failed: %v", err)
	}
	want := `{"kind":"step","status":"enter"}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}
