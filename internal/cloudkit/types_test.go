package cloudkit

import (
	"encoding/json"
	"testing"
)

func fields(t *testing.T, m map[string]any) Fields {
	t.Helper()
	out := Fields{}
	for name, v := range m {
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal field %s: %v", name, err)
		}
		out[name] = FieldValue{Value: b}
	}
	return out
}

func TestFieldsString(t *testing.T) {
	t.Parallel()
	f := fields(t, map[string]any{"state": "FINISHED", "count": 3})

	if s, ok := f.String("state"); !ok || s != "FINISHED" {
		t.Fatalf("String(state) = %q, %v", s, ok)
	}
	if _, ok := f.String("missing"); ok {
		t.Fatal("expected absent for missing field")
	}
	if _, ok := f.String("count"); ok {
		t.Fatal("expected absent for mistyped field")
	}
}

func TestFieldsInt64(t *testing.T) {
	t.Parallel()
	f := fields(t, map[string]any{"assetDate": 1234567890123, "name": "x"})

	if n, ok := f.Int64("assetDate"); !ok || n != 1234567890123 {
		t.Fatalf("Int64(assetDate) = %d, %v", n, ok)
	}
	if _, ok := f.Int64("missing"); ok {
		t.Fatal("expected absent for missing field")
	}
	if _, ok := f.Int64("name"); ok {
		t.Fatal("expected absent for mistyped field")
	}
}

func TestFieldsTruthy(t *testing.T) {
	t.Parallel()
	f := fields(t, map[string]any{
		"intFlag":   1,
		"zeroFlag":  0,
		"boolFlag":  true,
		"falseFlag": false,
		"strFlag":   "yes",
	})

	if !f.Truthy("intFlag") || !f.Truthy("boolFlag") {
		t.Fatal("expected truthy for 1 and true")
	}
	if f.Truthy("zeroFlag") || f.Truthy("falseFlag") || f.Truthy("strFlag") || f.Truthy("missing") {
		t.Fatal("expected falsy for 0, false, strings and missing fields")
	}
}

func TestFieldsRef(t *testing.T) {
	t.Parallel()
	f := fields(t, map[string]any{
		"masterRef": map[string]any{"recordName": "M1", "zoneID": map[string]any{"zoneName": ZoneName}},
		"badRef":    map[string]any{"zoneID": map[string]any{"zoneName": ZoneName}},
	})

	ref, ok := f.Ref("masterRef")
	if !ok || ref.RecordName != "M1" {
		t.Fatalf("Ref(masterRef) = %+v, %v", ref, ok)
	}
	if _, ok := f.Ref("badRef"); ok {
		t.Fatal("expected absent for reference without recordName")
	}
	if _, ok := f.Ref("missing"); ok {
		t.Fatal("expected absent for missing reference")
	}
}

func TestFieldsAsset(t *testing.T) {
	t.Parallel()
	f := fields(t, map[string]any{
		"resOriginalRes": map[string]any{"size": 1024, "downloadURL": "https://cdn.example/orig"},
	})

	a, ok := f.Asset("resOriginalRes")
	if !ok || a.Size != 1024 || a.DownloadURL != "https://cdn.example/orig" {
		t.Fatalf("Asset(resOriginalRes) = %+v, %v", a, ok)
	}
	if _, ok := f.Asset("missing"); ok {
		t.Fatal("expected absent for missing asset field")
	}
}

func TestRecordDecode(t *testing.T) {
	t.Parallel()
	raw := `{
		"recordName": "M1",
		"recordType": "CPLMaster",
		"recordChangeTag": "tag7",
		"fields": {"filenameEnc": {"value": "cGhvdG8=", "type": "ENCRYPTED_BYTES"}}
	}`
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	if rec.RecordName != "M1" || rec.RecordType != RecordTypeMaster || rec.RecordChangeTag != "tag7" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if v, ok := rec.Fields.String("filenameEnc"); !ok || v != "cGhvdG8=" {
		t.Fatalf("filenameEnc = %q, %v", v, ok)
	}
}
