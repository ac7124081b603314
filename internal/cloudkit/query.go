package cloudkit

// Query builders for the photos database. Every query runs zone-wide against
// PrimarySync; list queries always request the same static projection
// regardless of which album they serve.

// IndexingStateQuery checks whether the remote library has finished indexing.
func IndexingStateQuery() QueryRequest {
	return QueryRequest{
		Query:  Query{RecordType: RecordTypeIndexingState},
		ZoneID: ZoneID{ZoneName: ZoneName},
	}
}

// FolderListQuery lists user-created folders. marker continues a prior page;
// pass "" for the first page.
func FolderListQuery(marker string) QueryRequest {
	return QueryRequest{
		Query:              Query{RecordType: RecordTypeFolders},
		ContinuationMarker: marker,
		ZoneID:             ZoneID{ZoneName: ZoneName},
	}
}

// CountRequest builds the index-count lookup for one album object type.
func CountRequest(objType string) BatchRequest {
	return BatchRequest{
		Batch: []batchEntry{{
			ResultsLimit: 1,
			Query: countQuery{
				FilterBy: Filter{
					FieldName:  "indexCountID",
					Comparator: "IN",
					FieldValue: FilterValue{Type: "STRING_LIST", Value: []string{objType}},
				},
				RecordType: RecordTypeCountLookup,
			},
			ZoneWide: true,
			ZoneID:   ZoneID{ZoneName: ZoneName},
		}},
	}
}

// ListQuery builds one page request of an album's item index. The results
// limit is twice the logical page size because asset and master records for
// the same items arrive interleaved in a single page.
func ListQuery(offset int, listType, direction string, extra []Filter, pageSize int) QueryRequest {
	filters := []Filter{
		{
			FieldName:  "startRank",
			Comparator: "EQUALS",
			FieldValue: FilterValue{Type: "INT64", Value: offset},
		},
		{
			FieldName:  "direction",
			Comparator: "EQUALS",
			FieldValue: FilterValue{Type: "STRING", Value: direction},
		},
	}
	filters = append(filters, extra...)

	return QueryRequest{
		Query:        Query{FilterBy: filters, RecordType: listType},
		ResultsLimit: pageSize * 2,
		DesiredKeys:  desiredKeys,
		ZoneID:       ZoneID{ZoneName: ZoneName},
	}
}

// DeleteRequest marks the asset record deleted, keyed by the master's current
// change tag.
func DeleteRequest(assetName, assetType, masterChangeTag string) ModifyRequest {
	return ModifyRequest{
		Operations: []Operation{{
			OperationType: "update",
			Record: OperationRecord{
				RecordName:      assetName,
				RecordType:      assetType,
				RecordChangeTag: masterChangeTag,
				Fields:          map[string]WriteField{"isDeleted": {Value: 1}},
			},
		}},
		ZoneID: ZoneID{ZoneName: ZoneName},
		Atomic: true,
	}
}

// desiredKeys is the full projection requested for every list query: all
// rendition tiers plus identity, dates, flags and burst/live/HDR metadata.
var desiredKeys = []string{
	"resJPEGFullWidth",
	"resJPEGFullHeight",
	"resJPEGFullFileType",
	"resJPEGFullFingerprint",
	"resJPEGFullRes",
	"resJPEGLargeWidth",
	"resJPEGLargeHeight",
	"resJPEGLargeFileType",
	"resJPEGLargeFingerprint",
	"resJPEGLargeRes",
	"resJPEGMedWidth",
	"resJPEGMedHeight",
	"resJPEGMedFileType",
	"resJPEGMedFingerprint",
	"resJPEGMedRes",
	"resJPEGThumbWidth",
	"resJPEGThumbHeight",
	"resJPEGThumbFileType",
	"resJPEGThumbFingerprint",
	"resJPEGThumbRes",
	"resVidFullWidth",
	"resVidFullHeight",
	"resVidFullFileType",
	"resVidFullFingerprint",
	"resVidFullRes",
	"resVidMedWidth",
	"resVidMedHeight",
	"resVidMedFileType",
	"resVidMedFingerprint",
	"resVidMedRes",
	"resVidSmallWidth",
	"resVidSmallHeight",
	"resVidSmallFileType",
	"resVidSmallFingerprint",
	"resVidSmallRes",
	"resSidecarWidth",
	"resSidecarHeight",
	"resSidecarFileType",
	"resSidecarFingerprint",
	"resSidecarRes",
	"itemType",
	"dataClassType",
	"filenameEnc",
	"originalOrientation",
	"resOriginalWidth",
	"resOriginalHeight",
	"resOriginalFileType",
	"resOriginalFingerprint",
	"resOriginalRes",
	"resOriginalAltWidth",
	"resOriginalAltHeight",
	"resOriginalAltFileType",
	"resOriginalAltFingerprint",
	"resOriginalAltRes",
	"resOriginalVidComplWidth",
	"resOriginalVidComplHeight",
	"resOriginalVidComplFileType",
	"resOriginalVidComplFingerprint",
	"resOriginalVidComplRes",
	"isDeleted",
	"isExpunged",
	"dateExpunged",
	"remappedRef",
	"recordName",
	"recordType",
	"recordChangeTag",
	"masterRef",
	"adjustmentRenderType",
	"assetDate",
	"addedDate",
	"isFavorite",
	"isHidden",
	"orientation",
	"duration",
	"assetSubtype",
	"assetSubtypeV2",
	"assetHDRType",
	"burstFlags",
	"burstFlagsExt",
	"burstId",
	"captionEnc",
	"locationEnc",
	"locationV2Enc",
	"locationLatitude",
	"locationLongitude",
	"adjustmentType",
	"timeZoneOffset",
	"vidComplDurValue",
	"vidComplDurScale",
	"vidComplDispValue",
	"vidComplDispScale",
	"vidComplVisibilityState",
	"customRenderedValue",
	"containerId",
	"itemId",
	"position",
	"isKeyAsset",
}
