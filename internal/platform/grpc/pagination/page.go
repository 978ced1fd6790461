// Package pagination normalizes sequence-cursor page requests.
package pagination

// PageSizeConfig configures page size normalization.
type PageSizeConfig struct {
	Default int
	Max     int
}

// ClampPageSize applies defaults and limits for page sizes.
func ClampPageSize(value int32, cfg PageSizeConfig) int {
	pageSize := int(value)
	if pageSize <= 0 {
		pageSize = cfg.Default
	}
	if cfg.Max > 0 && pageSize > cfg.Max {
		pageSize = cfg.Max
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	return pageSize
}

// NextAfter returns the cursor for the page following one that ended at
// lastSeq. A short page means the caller reached the head, so the cursor is 0.
func NextAfter(lastSeq uint64, returned, pageSize int) uint64 {
	if returned == 0 || returned < pageSize {
		return 0
	}
	return lastSeq
}
