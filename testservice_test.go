package photos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/ddtrong/icloud-photos/internal/cloudkit"
)

// fakeStore emulates the photos database endpoints for tests.
type fakeStore struct {
	t *testing.T

	state   string           // indexing state, default FINISHED
	folders []folderResponse // sequential folder-listing pages
	count   int64            // itemCount for count queries

	// list serves item-list queries: call is the zero-based list call
	// index. status 0 means 200 OK.
	list func(call, offset int) (status int, records []map[string]any)

	folderCalls int
	countCalls  int
	listCalls   int
	offsets     []int

	modifyBodies []cloudkit.ModifyRequest
}

type folderResponse struct {
	records []map[string]any
	marker  string
}

func newFakeStore(t *testing.T) *fakeStore {
	return &fakeStore{
		t:       t,
		state:   "FINISHED",
		folders: []folderResponse{{}},
	}
}

type queryBody struct {
	Query struct {
		RecordType string `json:"recordType"`
		FilterBy   []struct {
			FieldName  string `json:"fieldName"`
			FieldValue struct {
				Value json.RawMessage `json:"value"`
			} `json:"fieldValue"`
		} `json:"filterBy"`
	} `json:"query"`
	ContinuationMarker string `json:"continuationMarker"`
	ResultsLimit       int    `json:"resultsLimit"`
}

func (s *fakeStore) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/internal/records/query/batch"):
			s.countCalls++
			writeJSON(s.t, w, map[string]any{
				"batch": []any{map[string]any{
					"records": []any{map[string]any{
						"fields": map[string]any{"itemCount": fv(s.count)},
					}},
				}},
			})

		case strings.HasSuffix(r.URL.Path, "/records/modify"):
			var req cloudkit.ModifyRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				s.t.Errorf("decode modify body: %v", err)
			}
			s.modifyBodies = append(s.modifyBodies, req)
			writeJSON(s.t, w, map[string]any{"records": []any{}})

		case strings.HasSuffix(r.URL.Path, "/records/query"):
			var body queryBody
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				s.t.Errorf("decode query body: %v", err)
			}
			s.serveQuery(w, body)

		default:
			s.t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func (s *fakeStore) serveQuery(w http.ResponseWriter, body queryBody) {
	switch body.Query.RecordType {
	case cloudkit.RecordTypeIndexingState:
		writeJSON(s.t, w, map[string]any{
			"records": []any{map[string]any{"fields": map[string]any{"state": fv(s.state)}}},
		})

	case cloudkit.RecordTypeFolders:
		if s.folderCalls >= len(s.folders) {
			s.t.Errorf("folder call %d beyond configured pages", s.folderCalls)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		page := s.folders[s.folderCalls]
		s.folderCalls++
		resp := map[string]any{"records": recordsOrEmpty(page.records)}
		if page.marker != "" {
			resp["continuationMarker"] = page.marker
		}
		writeJSON(s.t, w, resp)

	default: // item-list query
		offset := 0
		for _, f := range body.Query.FilterBy {
			if f.FieldName == "startRank" {
				if err := json.Unmarshal(f.FieldValue.Value, &offset); err != nil {
					s.t.Errorf("decode startRank: %v", err)
				}
			}
		}
		call := s.listCalls
		s.listCalls++
		s.offsets = append(s.offsets, offset)

		status, records := 0, []map[string]any(nil)
		if s.list != nil {
			status, records = s.list(call, offset)
		}
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		writeJSON(s.t, w, map[string]any{"records": recordsOrEmpty(records)})
	}
}

func (s *fakeStore) newLibrary(opts ...Option) *Library {
	s.t.Helper()
	srv := httptest.NewServer(s.handler())
	s.t.Cleanup(srv.Close)
	lib, err := New(context.Background(), srv.URL, srv.Client(), nil, opts...)
	if err != nil {
		s.t.Fatalf("New: %v", err)
	}
	return lib
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func recordsOrEmpty(records []map[string]any) []map[string]any {
	if records == nil {
		return []map[string]any{}
	}
	return records
}

// fv wraps a value in the {"value": ...} field envelope.
func fv(v any) map[string]any { return map[string]any{"value": v} }

// masterRec builds a CPLMaster record with the given extra fields.
func masterRec(name string, extra map[string]any) map[string]any {
	f := map[string]any{
		"itemType":       fv("public.jpeg"),
		"resOriginalRes": fv(map[string]any{"size": 2048, "downloadURL": "https://cdn.example/" + name}),
	}
	for k, v := range extra {
		f[k] = v
	}
	return map[string]any{
		"recordName":      name,
		"recordType":      "CPLMaster",
		"recordChangeTag": "tag-" + name,
		"fields":          f,
	}
}

// assetRec builds the CPLAsset record paired with a master.
func assetRec(masterName string) map[string]any {
	return map[string]any{
		"recordName":      "asset-" + masterName,
		"recordType":      "CPLAsset",
		"recordChangeTag": "atag-" + masterName,
		"fields": map[string]any{
			"masterRef": fv(map[string]any{"recordName": masterName}),
			"assetDate": fv(1650000000000),
			"addedDate": fv(1650000001000),
		},
	}
}

// pagePair builds an interleaved page of asset+master records for the given
// master names.
func pagePair(names ...string) []map[string]any {
	var out []map[string]any
	for _, name := range names {
		out = append(out, assetRec(name), masterRec(name, nil))
	}
	return out
}

// namedPage builds n pairs named with the given prefix starting at index
// start.
func namedPage(prefix string, start, n int) []map[string]any {
	names := make([]string, n)
	for i := range names {
		names[i] = prefixed(prefix, start+i)
	}
	return pagePair(names...)
}

func prefixed(prefix string, i int) string {
	return prefix + "-" + strconv.Itoa(i)
}
