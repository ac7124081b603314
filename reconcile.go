package photos

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ddtrong/icloud-photos/internal/cloudkit"
)

// reconcilePage joins one page of raw records into photo assets. Asset
// records are keyed by their masterRef target; masters are walked in response
// order and paired with their asset record. An asset with no master in the
// page is never materialized. A master with no asset is a store inconsistency:
// it aborts the page unless the album was built with skip-orphans enabled.
//
// The returned master count drives the offset cursor and includes skipped
// orphans.
func (a *Album) reconcilePage(records []cloudkit.Record) ([]*PhotoAsset, int, error) {
	assetsByMaster := make(map[string]cloudkit.Record)
	var masters []cloudkit.Record
	for _, rec := range records {
		switch rec.RecordType {
		case cloudkit.RecordTypeAsset:
			if ref, ok := rec.Fields.Ref("masterRef"); ok {
				assetsByMaster[ref.RecordName] = rec
			}
		case cloudkit.RecordTypeMaster:
			masters = append(masters, rec)
		}
	}

	assets := make([]*PhotoAsset, 0, len(masters))
	for _, master := range masters {
		assetRec, ok := assetsByMaster[master.RecordName]
		if !ok {
			if a.skipOrphans {
				log.Debug().Str("record", master.RecordName).Str("album", a.name).
					Msg("skipping master record with no asset record")
				continue
			}
			return nil, 0, fmt.Errorf("record %s: %w", master.RecordName, ErrOrphanMaster)
		}
		assets = append(assets, newPhotoAsset(a.lib, master, assetRec))
	}
	return assets, len(masters), nil
}
