package optional

import (
	"encoding/json"
	"testing"
)

type updateRequest struct {
	Name        Value[string] `json:"name"`
	Stock       Value[int]    `json:"stock"`
	Featured    Value[bool]   `json:"featured"`
	Description Value[string] `json:"description"`
}

func TestUnmarshalDistinguishesUnsetNullAndZero(t *testing.T) {
	var req updateRequest
	if err := json.Unmarshal([]byte(`{"stock":0,"featured":false,"description":null}`), &req); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if req.Name.IsSet() {
		t.Error("name should be unset")
	}

	stock, ok := req.Stock.Get()
	if !ok || stock != 0 {
		t.Errorf("stock = %v,%v want 0,true", stock, ok)
	}

	featured, ok := req.Featured.Get()
	if !ok || featured {
		t.Errorf("featured = %v,%v want false,true", featured, ok)
	}

	if !req.Description.IsNull() {
		t.Error("description should be null")
	}
	if _, ok := req.Description.Get(); ok {
		t.Error("Get on a null value should report false")
	}
}

func TestApply(t *testing.T) {
	name := "before"

	var unset Value[string]
	if ok := unset.Apply(&name); !ok || name != "before" {
		t.Errorf("unset apply changed value to %q", name)
	}

	if ok := Some("after").Apply(&name); !ok || name != "after" {
		t.Errorf("Some apply: got %q", name)
	}

	if ok := Null[string]().Apply(&name); ok {
		t.Error("Null apply should report false")
	}
	if name != "after" {
		t.Errorf("Null apply should leave dst untouched, got %q", name)
	}
}

func TestApplyNullable(t *testing.T) {
	url := "http://example.com/a.png"
	dst := &url

	Null[string]().ApplyNullable(&dst)
	if dst != nil {
		t.Errorf("expected nil after null apply, got %v", *dst)
	}

	Some("http://example.com/b.png").ApplyNullable(&dst)
	if dst == nil || *dst != "http://example.com/b.png" {
		t.Errorf("unexpected value after Some apply: %v", dst)
	}

	var unset Value[string]
	unset.ApplyNullable(&dst)
	if dst == nil {
		t.Error("unset apply should not clear the value")
	}
}

func TestOr(t *testing.T) {
	if got := Some(0).Or(5); got != 0 {
		t.Errorf("Some(0).Or(5) = %d, want 0", got)
	}
	var unset Value[int]
	if got := unset.Or(5); got != 5 {
		t.Errorf("unset.Or(5) = %d, want 5", got)
	}
}

func TestMarshalOmitsUnsetFields(t *testing.T) {
	req := struct {
		Name  Value[string] `json:"name,omitzero"`
		Phone Value[string] `json:"phone,omitzero"`
		Stock Value[int]    `json:"stock,omitzero"`
	}{
		Name:  Some("Ada"),
		Phone: Null[string](),
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	want := `{"name":"Ada","phone":null}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}
