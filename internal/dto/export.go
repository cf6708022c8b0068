package dto

import "time"

// Export variants.
const (
	ExportVariantClassList = "class-list"
)

// ExportRequest selects the projection and encoding of an export.
type ExportRequest struct {
	View    string `json:"view" form:"view"`
	Format  string `json:"format" form:"format"`
	Variant string `json:"variant" form:"variant"`
	Search  string `json:"search" form:"search"`
	Program string `json:"program" form:"program"`
}

// ExportLink is returned for stored exports.
type ExportLink struct {
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
