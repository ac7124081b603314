package photos

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ddtrong/icloud-photos/internal/cloudkit"
)

// Sort directions for album traversal.
const (
	Ascending  = "ASCENDING"
	Descending = "DESCENDING"
)

// AllPhotosAlbum is the name of the default smart album covering the whole
// library.
const AllPhotosAlbum = "All Photos"

// rootFolderID is the well-known pseudo-folder that owns every top-level
// user folder; it is never exposed as an album.
const rootFolderID = "----Root-Folder----"

// albumDef describes how an album is queried: the list record type for item
// pages, the object type for count lookups, the traversal direction and any
// extra filter clauses. Immutable once constructed.
type albumDef struct {
	listType  string
	objType   string
	direction string
	filters   []cloudkit.Filter
}

func smartAlbumFilter(value string) []cloudkit.Filter {
	return []cloudkit.Filter{{
		FieldName:  "smartAlbum",
		Comparator: "EQUALS",
		FieldValue: cloudkit.FilterValue{Type: "STRING", Value: value},
	}}
}

// smartAlbums is the fixed set of system-defined albums, present regardless
// of remote folder content.
var smartAlbums = map[string]albumDef{
	AllPhotosAlbum: {
		listType:  "CPLAssetAndMasterByAddedDate",
		objType:   "CPLAssetByAddedDate",
		direction: Ascending,
	},
	"Time-lapse": {
		listType:  "CPLAssetAndMasterInSmartAlbumByAssetDate",
		objType:   "CPLAssetInSmartAlbumByAssetDate:Timelapse",
		direction: Ascending,
		filters:   smartAlbumFilter("TIMELAPSE"),
	},
	"Videos": {
		listType:  "CPLAssetAndMasterInSmartAlbumByAssetDate",
		objType:   "CPLAssetInSmartAlbumByAssetDate:Video",
		direction: Ascending,
		filters:   smartAlbumFilter("VIDEO"),
	},
	"Slo-mo": {
		listType:  "CPLAssetAndMasterInSmartAlbumByAssetDate",
		objType:   "CPLAssetInSmartAlbumByAssetDate:Slomo",
		direction: Ascending,
		filters:   smartAlbumFilter("SLOMO"),
	},
	"Bursts": {
		listType:  "CPLBurstStackAssetAndMasterByAssetDate",
		objType:   "CPLAssetBurstStackAssetByAssetDate",
		direction: Ascending,
	},
	"Favorites": {
		listType:  "CPLAssetAndMasterInSmartAlbumByAssetDate",
		objType:   "CPLAssetInSmartAlbumByAssetDate:Favorite",
		direction: Ascending,
		filters:   smartAlbumFilter("FAVORITE"),
	},
	"Panoramas": {
		listType:  "CPLAssetAndMasterInSmartAlbumByAssetDate",
		objType:   "CPLAssetInSmartAlbumByAssetDate:Panorama",
		direction: Ascending,
		filters:   smartAlbumFilter("PANORAMA"),
	},
	"Screenshots": {
		listType:  "CPLAssetAndMasterInSmartAlbumByAssetDate",
		objType:   "CPLAssetInSmartAlbumByAssetDate:Screenshot",
		direction: Ascending,
		filters:   smartAlbumFilter("SCREENSHOT"),
	},
	"Live": {
		listType:  "CPLAssetAndMasterInSmartAlbumByAssetDate",
		objType:   "CPLAssetInSmartAlbumByAssetDate:Live",
		direction: Ascending,
		filters:   smartAlbumFilter("LIVE"),
	},
	"Recently Deleted": {
		listType:  "CPLAssetAndMasterDeletedByExpungedDate",
		objType:   "CPLAssetDeletedByExpungedDate",
		direction: Ascending,
	},
	"Hidden": {
		listType:  "CPLAssetAndMasterHiddenByAssetDate",
		objType:   "CPLAssetHiddenByAssetDate",
		direction: Ascending,
	},
}

// Album is one browsable collection: a smart album or a user folder. It owns
// its memoized item count; the count is never refreshed for the life of the
// handle, so rebuild the Library to pick up remote changes.
type Album struct {
	lib  *Library
	name string
	def  albumDef

	pageSize    int
	retry       RetryPolicy
	skipOrphans bool

	count    int
	hasCount bool
}

func (lib *Library) newAlbum(name string, def albumDef) *Album {
	return &Album{
		lib:         lib,
		name:        name,
		def:         def,
		pageSize:    lib.pageSize,
		retry:       lib.retry,
		skipOrphans: lib.skipOrphans,
	}
}

// folderAlbum builds an album from a folder record. Folders without a name
// field, the root pseudo-folder, and soft-deleted folders yield no album.
func (lib *Library) folderAlbum(rec cloudkit.Record) (*Album, bool) {
	enc, ok := rec.Fields.String("albumNameEnc")
	if !ok {
		return nil, false
	}
	if rec.RecordName == rootFolderID || rec.Fields.Truthy("isDeleted") {
		return nil, false
	}
	name, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		log.Debug().Str("record", rec.RecordName).Err(err).Msg("skipping folder with undecodable name")
		return nil, false
	}
	def := albumDef{
		listType:  "CPLContainerRelationLiveByAssetDate",
		objType:   "CPLContainerRelationNotDeletedByAssetDate:" + rec.RecordName,
		direction: Ascending,
		filters: []cloudkit.Filter{{
			FieldName:  "parentId",
			Comparator: "EQUALS",
			FieldValue: cloudkit.FilterValue{Type: "STRING", Value: rec.RecordName},
		}},
	}
	return lib.newAlbum(string(name), def), true
}

// Name returns the album's display name.
func (a *Album) Name() string { return a.name }

// SetRetryPolicy overrides the library-level retry policy for this album's
// page fetches. A nil policy makes fetch failures propagate immediately.
func (a *Album) SetRetryPolicy(p RetryPolicy) { a.retry = p }

// Count returns the number of items in the album. The value is fetched once
// and memoized on the Album.
func (a *Album) Count(ctx context.Context) (int, error) {
	if a.hasCount {
		return a.count, nil
	}
	queriesTotal.WithLabelValues("batch").Inc()
	resp, err := cloudkit.PostBatch(ctx, a.lib.http, a.lib.endpoint, a.lib.params, cloudkit.CountRequest(a.def.objType))
	if err != nil {
		return 0, err
	}
	if len(resp.Batch) == 0 || len(resp.Batch[0].Records) == 0 {
		return 0, fmt.Errorf("album %q: count query returned no records", a.name)
	}
	n, ok := resp.Batch[0].Records[0].Fields.Int64("itemCount")
	if !ok {
		return 0, fmt.Errorf("album %q: count record has no itemCount field", a.name)
	}
	a.count = int(n)
	a.hasCount = true
	return a.count, nil
}

// Photos returns a pull-driven iterator over the album's assets. Each call
// starts a fresh traversal from the direction-appropriate initial offset.
// Producing the next asset may block on a network round-trip; abandoning the
// iterator simply abandons its cursor.
//
//	it := album.Photos(ctx)
//	for it.Next() {
//		asset := it.Asset()
//		...
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
func (a *Album) Photos(ctx context.Context) *AssetIter {
	return &AssetIter{ctx: ctx, album: a, idx: -1}
}

// AssetIter iterates an album page by page. It is not safe for concurrent
// use.
type AssetIter struct {
	ctx   context.Context
	album *Album

	offset   int
	started  bool
	done     bool
	err      error
	attempts int

	page []*PhotoAsset
	idx  int
}

// Next advances to the next asset, fetching a new page when the current one
// is exhausted. It returns false when the album is drained or a fetch failed;
// consult Err to tell the two apart.
func (it *AssetIter) Next() bool {
	if it.err != nil || it.done {
		return false
	}
	if !it.started {
		it.started = true
		if it.album.def.direction == Descending {
			n, err := it.album.Count(it.ctx)
			if err != nil {
				it.err = err
				return false
			}
			it.offset = n - 1
		}
	}
	it.idx++
	for it.idx >= len(it.page) {
		if !it.fetchPage() {
			return false
		}
	}
	return true
}

// Asset returns the asset positioned by the last successful Next.
func (it *AssetIter) Asset() *PhotoAsset { return it.page[it.idx] }

// Err returns the error that terminated iteration, if any.
func (it *AssetIter) Err() error { return it.err }

// fetchPage requests the page at the current offset and reconciles it.
// On a suppressed failure it leaves the cursor untouched and reports true so
// the caller retries the identical request.
func (it *AssetIter) fetchPage() bool {
	a := it.album
	req := cloudkit.ListQuery(it.offset, a.def.listType, a.def.direction, a.def.filters, a.pageSize)
	queriesTotal.WithLabelValues("query").Inc()
	resp, err := cloudkit.PostQuery(it.ctx, a.lib.http, a.lib.endpoint, a.lib.params, req)
	if err != nil {
		if a.retry == nil {
			log.Debug().Err(err).Str("album", a.name).Msg("page fetch failed, no retry policy registered")
			it.err = err
			return false
		}
		it.attempts++
		queryRetriesTotal.Inc()
		if abort := a.retry.OnFailure(err, it.attempts); abort != nil {
			it.err = abort
			return false
		}
		return true
	}
	it.attempts = 0

	assets, masters, err := a.reconcilePage(resp.Records)
	if err != nil {
		it.err = err
		return false
	}
	if masters == 0 {
		it.done = true
		return false
	}
	if a.def.direction == Descending {
		it.offset -= masters
	} else {
		it.offset += masters
	}
	assetsListedTotal.Add(float64(len(assets)))
	it.page = assets
	it.idx = 0
	return true
}
