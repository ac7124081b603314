package photos

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ddtrong/icloud-photos/internal/cloudkit"
)

// ItemType classifies an asset by its content-type tag.
type ItemType string

const (
	ItemTypeImage   ItemType = "image"
	ItemTypeMovie   ItemType = "movie"
	ItemTypeUnknown ItemType = "unknown"
)

// quicktimeMovieType is the content-type tag of the motion component of live
// photos.
const quicktimeMovieType = "com.apple.quicktime-movie"

// itemTypes maps raw content-type tags to a semantic kind. Tags not listed
// here degrade to ItemTypeUnknown; the tag space is open-ended.
var itemTypes = map[string]ItemType{
	"public.heic":               ItemTypeImage,
	"public.jpeg":               ItemTypeImage,
	"public.png":                ItemTypeImage,
	"com.compuserve.gif":        ItemTypeImage,
	"com.microsoft.bmp":         ItemTypeImage,
	"com.adobe.raw-image":       ItemTypeImage,
	"com.apple.quicktime-movie": ItemTypeMovie,
	"public.mpeg-4":             ItemTypeMovie,
	"com.apple.m4v-video":       ItemTypeMovie,
	"public.3gpp":               ItemTypeMovie,
	"public.avi":                ItemTypeMovie,
	"public.mpeg":               ItemTypeMovie,
}

// itemTypeExtensions maps raw content-type tags to a canonical file
// extension.
var itemTypeExtensions = map[string]string{
	"public.heic":               "HEIC",
	"public.jpeg":               "JPG",
	"public.png":                "PNG",
	"com.apple.quicktime-movie": "MOV",
	"public.mpeg-4":             "MP4",
	"com.apple.m4v-video":       "M4V",
	"com.microsoft.bmp":         "BMP",
	"public.3gpp":               "3GP",
	"public.avi":                "AVI",
	"public.mpeg":               "MPG",
}

// Version lookup tables: logical version name to the field-name prefix that
// carries its resolution, size, type and locator fields. Image assets use the
// six-entry table, whose two *Video keys expose the motion components of live
// photos; movie assets use the three-entry table.
var (
	photoVersionLookup = map[string]string{
		"original":      "resOriginal",
		"medium":        "resJPEGMed",
		"thumb":         "resJPEGThumb",
		"originalVideo": "resOriginalVidCompl",
		"mediumVideo":   "resVidMed",
		"thumbVideo":    "resVidSmall",
	}
	videoVersionLookup = map[string]string{
		"original": "resOriginal",
		"medium":   "resVidMed",
		"thumb":    "resVidSmall",
	}
)

// Version is one concrete encoded rendition of an asset. Width, Height and
// Size are nil when the store did not report them; Type and URL are empty
// when absent.
type Version struct {
	Filename string
	Width    *int64
	Height   *int64
	Size     *int64
	Type     string
	URL      string
}

// PhotoAsset is one logical photo or video, joined from its master record
// (rendition metadata) and asset record (library-placement metadata).
type PhotoAsset struct {
	lib    *Library
	master cloudkit.Record
	asset  cloudkit.Record

	versionsOnce sync.Once
	versions     map[string]Version
}

func newPhotoAsset(lib *Library, master, asset cloudkit.Record) *PhotoAsset {
	return &PhotoAsset{lib: lib, master: master, asset: asset}
}

// ID returns the asset's identifier, the master record name.
func (p *PhotoAsset) ID() string { return p.master.RecordName }

// literalExtensions marks raw filename values that were stored as plain text
// rather than base64; such values pass through undecoded.
var literalExtensions = []string{".png", ".dng", ".mp4", ".gif"}

var nonAlphanumeric = regexp.MustCompile(`[^0-9a-zA-Z]`)

// Filename returns the asset's filename. The stored value is base64 text
// unless it already carries a recognized literal extension. Assets without a
// stored name get a synthetic one derived from the identifier plus the
// canonical extension for their kind.
func (p *PhotoAsset) Filename() string {
	if raw, ok := p.master.Fields.String("filenameEnc"); ok {
		for _, ext := range literalExtensions {
			if strings.Contains(raw, ext) {
				return raw
			}
		}
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err == nil {
			return string(decoded)
		}
		log.Debug().Str("record", p.ID()).Err(err).Msg("filenameEnc is not valid base64, synthesizing name")
	}
	name := nonAlphanumeric.ReplaceAllString(p.ID(), "_")
	if len(name) > 12 {
		name = name[:12]
	}
	return name + "." + p.ItemTypeExtension()
}

// Size returns the byte size of the original rendition.
func (p *PhotoAsset) Size() (int64, bool) {
	res, ok := p.master.Fields.Asset("resOriginalRes")
	if !ok {
		return 0, false
	}
	return res.Size, true
}

// Created is an alias for AssetDate.
func (p *PhotoAsset) Created() time.Time { return p.AssetDate() }

// AssetDate returns the asset's capture date. A missing field yields the
// Unix epoch; treat epoch-zero as "unknown date".
func (p *PhotoAsset) AssetDate() time.Time {
	ms, ok := p.asset.Fields.Int64("assetDate")
	if !ok {
		return time.Unix(0, 0).UTC()
	}
	return time.UnixMilli(ms).UTC()
}

// AddedDate returns when the asset was added to the library. Unlike
// AssetDate, a missing field is an error.
func (p *PhotoAsset) AddedDate() (time.Time, error) {
	ms, ok := p.asset.Fields.Int64("addedDate")
	if !ok {
		return time.Time{}, fmt.Errorf("record %s: no addedDate field", p.ID())
	}
	return time.UnixMilli(ms).UTC(), nil
}

// Dimensions returns the pixel dimensions of the original rendition.
func (p *PhotoAsset) Dimensions() (width, height int64, ok bool) {
	w, wok := p.master.Fields.Int64("resOriginalWidth")
	h, hok := p.master.Fields.Int64("resOriginalHeight")
	return w, h, wok && hok
}

// ItemType classifies the asset as image or movie. Unknown content-type tags
// map to ItemTypeUnknown rather than failing.
func (p *PhotoAsset) ItemType() ItemType {
	tag, _ := p.master.Fields.String("itemType")
	if kind, ok := itemTypes[tag]; ok {
		return kind
	}
	log.Debug().Str("itemType", tag).Msg("returning unknown item type")
	return ItemTypeUnknown
}

// ItemTypeExtension returns the canonical file extension for the asset's
// content-type tag, or "unknown" for unrecognized tags.
func (p *PhotoAsset) ItemTypeExtension() string {
	tag, _ := p.master.Fields.String("itemType")
	if ext, ok := itemTypeExtensions[tag]; ok {
		return ext
	}
	log.Debug().Str("itemType", tag).Msg("returning unknown item type extension")
	return "unknown"
}

// MasterRecord returns the raw master record backing this asset.
func (p *PhotoAsset) MasterRecord() cloudkit.Record { return p.master }

// AssetRecord returns the raw asset record backing this asset.
func (p *PhotoAsset) AssetRecord() cloudkit.Record { return p.asset }

var trailingExtension = regexp.MustCompile(`\.[^.]+$`)

// Versions returns the renditions available for this asset by version name.
// The map is computed on first call and reused for the asset's lifetime.
func (p *PhotoAsset) Versions() map[string]Version {
	p.versionsOnce.Do(func() {
		kind := p.ItemType()
		lookup := photoVersionLookup
		if kind == ItemTypeMovie {
			lookup = videoVersionLookup
		}

		filename := p.Filename()
		fields := p.master.Fields
		p.versions = make(map[string]Version)
		for key, prefix := range lookup {
			if !fields.Has(prefix + "Res") {
				continue
			}
			v := Version{Filename: filename}
			if w, ok := fields.Int64(prefix + "Width"); ok {
				v.Width = &w
			}
			if h, ok := fields.Int64(prefix + "Height"); ok {
				v.Height = &h
			}
			if res, ok := fields.Asset(prefix + "Res"); ok {
				size := res.Size
				v.Size = &size
				v.URL = res.DownloadURL
			}
			if t, ok := fields.String(prefix + "FileType"); ok {
				v.Type = t
			}

			// The motion component of a live photo shares the still
			// image's filename; rename it to its .MOV container.
			if kind == ItemTypeImage && v.Type == quicktimeMovieType {
				if strings.HasSuffix(strings.ToLower(filename), ".heic") {
					v.Filename = trailingExtension.ReplaceAllString(filename, "_HEVC.MOV")
				} else {
					v.Filename = trailingExtension.ReplaceAllString(filename, ".MOV")
				}
			}

			p.versions[key] = v
		}
	})
	return p.versions
}

// Download streams the bytes of the named version ("original", "medium",
// "thumb", ...). The caller owns the returned body and must close it.
func (p *PhotoAsset) Download(ctx context.Context, version string) (io.ReadCloser, error) {
	v, ok := p.Versions()[version]
	if !ok {
		return nil, fmt.Errorf("record %s: %w: %q", p.ID(), ErrVersionNotFound, version)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.lib.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("download %s version %q: HTTP %d", p.ID(), version, resp.StatusCode)
	}
	return resp.Body, nil
}

// Delete marks the asset deleted in the remote library. The modify response
// is returned raw; the store reports per-record results in it.
func (p *PhotoAsset) Delete(ctx context.Context) (json.RawMessage, error) {
	req := cloudkit.DeleteRequest(p.asset.RecordName, p.asset.RecordType, p.master.RecordChangeTag)
	queriesTotal.WithLabelValues("modify").Inc()
	return cloudkit.PostModify(ctx, p.lib.http, p.lib.endpoint, p.lib.params, req)
}
