// Package cloudkit holds the wire types and query plumbing for the CloudKit
// private photos database. Records arrive as open-ended field bags; the Fields
// accessors turn missing or mistyped fields into typed "absent" results instead
// of runtime failures.
package cloudkit

import "encoding/json"

// Record kinds and query record types used by the photos database.
const (
	RecordTypeAsset  = "CPLAsset"
	RecordTypeMaster = "CPLMaster"

	RecordTypeIndexingState = "CheckIndexingState"
	RecordTypeFolders       = "CPLAlbumByPositionLive"
	RecordTypeCountLookup   = "HyperionIndexCountLookup"
)

// ZoneName is the sync zone every photos query runs against.
const ZoneName = "PrimarySync"

// ZoneID identifies the database zone in requests and responses.
type ZoneID struct {
	ZoneName string `json:"zoneName"`
}

// Record is a single raw record returned by a query.
type Record struct {
	RecordName      string `json:"recordName"`
	RecordType      string `json:"recordType"`
	RecordChangeTag string `json:"recordChangeTag"`
	Fields          Fields `json:"fields"`
}

// Fields is the untyped field bag of a record.
type Fields map[string]FieldValue

// FieldValue is one field entry. Value is kept raw; use the Fields accessors
// to read it with the expected shape.
type FieldValue struct {
	Value json.RawMessage `json:"value"`
	Type  string          `json:"type,omitempty"`
}

// Reference is the shape of record-reference field values such as masterRef.
type Reference struct {
	RecordName string `json:"recordName"`
	ZoneID     ZoneID `json:"zoneID,omitempty"`
}

// Asset is the shape of res*Res field values: a download handle for one
// encoded rendition.
type Asset struct {
	Size         int64  `json:"size"`
	DownloadURL  string `json:"downloadURL"`
	FileChecksum string `json:"fileChecksum,omitempty"`
}

// Has reports whether the field is present at all.
func (f Fields) Has(name string) bool {
	_, ok := f[name]
	return ok
}

// String returns the field as a string.
func (f Fields) String(name string) (string, bool) {
	fv, ok := f[name]
	if !ok || fv.Value == nil {
		return "", false
	}
	var s string
	if err := json.Unmarshal(fv.Value, &s); err != nil {
		return "", false
	}
	return s, true
}

// Int64 returns the field as an integer.
func (f Fields) Int64(name string) (int64, bool) {
	fv, ok := f[name]
	if !ok || fv.Value == nil {
		return 0, false
	}
	var n int64
	if err := json.Unmarshal(fv.Value, &n); err != nil {
		return 0, false
	}
	return n, true
}

// Truthy reports whether the field is present with a non-zero value. The
// store writes flags like isDeleted as either booleans or 0/1 integers.
func (f Fields) Truthy(name string) bool {
	fv, ok := f[name]
	if !ok || fv.Value == nil {
		return false
	}
	var b bool
	if err := json.Unmarshal(fv.Value, &b); err == nil {
		return b
	}
	var n int64
	if err := json.Unmarshal(fv.Value, &n); err == nil {
		return n != 0
	}
	return false
}

// Ref returns the field as a record reference.
func (f Fields) Ref(name string) (Reference, bool) {
	fv, ok := f[name]
	if !ok || fv.Value == nil {
		return Reference{}, false
	}
	var r Reference
	if err := json.Unmarshal(fv.Value, &r); err != nil || r.RecordName == "" {
		return Reference{}, false
	}
	return r, true
}

// Asset returns the field as a rendition download handle.
func (f Fields) Asset(name string) (Asset, bool) {
	fv, ok := f[name]
	if !ok || fv.Value == nil {
		return Asset{}, false
	}
	var a Asset
	if err := json.Unmarshal(fv.Value, &a); err != nil {
		return Asset{}, false
	}
	return a, true
}

// FilterValue carries a typed literal inside a query filter.
type FilterValue struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// Filter is one filterBy clause. The library never interprets clause
// semantics beyond appending them to a query.
type Filter struct {
	FieldName  string      `json:"fieldName"`
	Comparator string      `json:"comparator"`
	FieldValue FilterValue `json:"fieldValue"`
}

// Query is the inner query object of a records/query request.
type Query struct {
	FilterBy   []Filter `json:"filterBy,omitempty"`
	RecordType string   `json:"recordType"`
}

// QueryRequest is the body of a records/query call.
type QueryRequest struct {
	Query              Query    `json:"query"`
	ResultsLimit       int      `json:"resultsLimit,omitempty"`
	DesiredKeys        []string `json:"desiredKeys,omitempty"`
	ContinuationMarker string   `json:"continuationMarker,omitempty"`
	ZoneID             ZoneID   `json:"zoneID"`
}

// QueryResponse is the body of a records/query response. ContinuationMarker
// is only set by folder-listing queries and signals more pages exist.
type QueryResponse struct {
	Records            []Record `json:"records"`
	ContinuationMarker string   `json:"continuationMarker,omitempty"`
	SyncToken          string   `json:"syncToken,omitempty"`
}

// countQuery differs from Query: the store expects a single filterBy object
// here, not a list.
type countQuery struct {
	FilterBy   Filter `json:"filterBy"`
	RecordType string `json:"recordType"`
}

type batchEntry struct {
	ResultsLimit int        `json:"resultsLimit"`
	Query        countQuery `json:"query"`
	ZoneWide     bool       `json:"zoneWide"`
	ZoneID       ZoneID     `json:"zoneID"`
}

// BatchRequest is the body of an internal/records/query/batch call.
type BatchRequest struct {
	Batch []batchEntry `json:"batch"`
}

// BatchResponse wraps the per-entry query responses of a batch call.
type BatchResponse struct {
	Batch []QueryResponse `json:"batch"`
}

// WriteField is a field value in a modify operation.
type WriteField struct {
	Value any `json:"value"`
}

// OperationRecord addresses one record in a modify operation. RecordChangeTag
// is the optimistic-concurrency token; a stale tag makes the store reject the
// operation.
type OperationRecord struct {
	RecordName      string                `json:"recordName"`
	RecordType      string                `json:"recordType"`
	RecordChangeTag string                `json:"recordChangeTag"`
	Fields          map[string]WriteField `json:"fields"`
}

// Operation is one entry of a records/modify request.
type Operation struct {
	OperationType string          `json:"operationType"`
	Record        OperationRecord `json:"record"`
}

// ModifyRequest is the body of a records/modify call.
type ModifyRequest struct {
	Operations []Operation `json:"operations"`
	ZoneID     ZoneID      `json:"zoneID"`
	Atomic     bool        `json:"atomic"`
}
