// Package photos is a client library for the iCloud photo library: it
// discovers albums, paginates their item indexes, joins the two-record
// storage model into logical photo assets, and resolves the renditions
// available for each asset.
//
// Session establishment is out of scope: callers supply an *http.Client that
// already carries authentication, plus the session query parameters the
// service expects on every call.
package photos

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ddtrong/icloud-photos/internal/cloudkit"
)

// servicePath is appended to the caller's service root to form the photos
// database endpoint.
const servicePath = "/database/1/com.apple.photos.cloud/production/private"

// Library is the top-level entry point. A Library is only constructed once
// the remote index reports FINISHED; until then New fails with
// ErrIndexingInProgress and callers are expected to retry later.
type Library struct {
	http     *http.Client
	endpoint string
	params   url.Values

	pageSize    int
	retry       RetryPolicy
	skipOrphans bool

	albums map[string]*Album // lazily built by Albums
}

// New constructs a Library against serviceRoot using the caller's
// authenticated httpClient and session params. It issues the index-readiness
// check before returning; no other network calls happen at construction.
func New(ctx context.Context, serviceRoot string, httpClient *http.Client, params url.Values, opts ...Option) (*Library, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	lib := &Library{
		http:     httpClient,
		endpoint: serviceRoot + servicePath,
		params:   sessionParams(params),
		pageSize: cfg.PageSize,
	}
	if cfg.MaxAttempts > 0 {
		lib.retry = NewExponentialRetryPolicy(cfg.MaxAttempts)
	}

	// Auto-enable debug via env variable without changing code.
	if cfg.Debug || debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(lib); err != nil {
			return nil, err
		}
	}

	if err := lib.checkIndexingState(ctx); err != nil {
		return nil, err
	}
	return lib, nil
}

// sessionParams copies the caller's params and adds the parameters every
// query endpoint expects. A clientId is generated when the session did not
// carry one.
func sessionParams(params url.Values) url.Values {
	out := url.Values{}
	for k, vs := range params {
		out[k] = append([]string(nil), vs...)
	}
	out.Set("remapEnums", "true")
	out.Set("getCurrentSyncToken", "true")
	if out.Get("clientId") == "" {
		out.Set("clientId", uuid.NewString())
	}
	return out
}

func (lib *Library) checkIndexingState(ctx context.Context) error {
	queriesTotal.WithLabelValues("query").Inc()
	resp, err := cloudkit.PostQuery(ctx, lib.http, lib.endpoint, lib.params, cloudkit.IndexingStateQuery())
	if err != nil {
		return err
	}
	if len(resp.Records) == 0 {
		return errIndexing("indexing state query returned no records")
	}
	state, _ := resp.Records[0].Fields.String("state")
	if state != "FINISHED" {
		log.Debug().Str("state", state).Msg("photo library not finished indexing")
		return errIndexing("indexing state is " + state)
	}
	return nil
}

// Albums returns the browsable albums by name: the fixed smart albums plus
// user-created folders. The catalog is built on first call and memoized for
// the life of the Library.
func (lib *Library) Albums(ctx context.Context) (map[string]*Album, error) {
	if lib.albums != nil {
		return lib.albums, nil
	}

	albums := make(map[string]*Album, len(smartAlbums))
	for name, def := range smartAlbums {
		albums[name] = lib.newAlbum(name, def)
	}

	folders, err := lib.fetchFolders(ctx)
	if err != nil {
		return nil, err
	}
	for _, folder := range folders {
		album, ok := lib.folderAlbum(folder)
		if !ok {
			continue
		}
		// Duplicate decoded names are last-write-wins.
		albums[album.name] = album
	}

	lib.albums = albums
	return albums, nil
}

// All returns the "All Photos" album.
func (lib *Library) All(ctx context.Context) (*Album, error) {
	albums, err := lib.Albums(ctx)
	if err != nil {
		return nil, err
	}
	return albums[AllPhotosAlbum], nil
}

// fetchFolders pages through the folder listing, following continuation
// markers until a response arrives without one.
func (lib *Library) fetchFolders(ctx context.Context) ([]cloudkit.Record, error) {
	var records []cloudkit.Record
	marker := ""
	for {
		queriesTotal.WithLabelValues("query").Inc()
		resp, err := cloudkit.PostQuery(ctx, lib.http, lib.endpoint, lib.params, cloudkit.FolderListQuery(marker))
		if err != nil {
			return nil, err
		}
		records = append(records, resp.Records...)
		if resp.ContinuationMarker == "" {
			return records, nil
		}
		marker = resp.ContinuationMarker
	}
}
