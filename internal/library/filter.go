package library

// AssetFilter specifies criteria for listing assets.
type AssetFilter struct {
	Album     *string
	MediaType *MediaType
	Origin    *Origin
	Platform  *string
	Limit     int // 0 = no limit
	Offset    int
}
