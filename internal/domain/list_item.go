package domain

// ListItem is one row of the grid view.
// IDs are unique within a held collection; Categories keep upstream order.
type ListItem struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	ThumbnailImage string   `json:"thumbnail_image"`
	PreviewImage   string   `json:"preview_image"`
	Categories     []string `json:"categories"`
}

// PaginationCursor tracks the next page to fetch from the upstream listing.
// HasMore only ever moves from true to false, except on an explicit reset.
type PaginationCursor struct {
	PageIndex int  `json:"page_index"`
	PageSize  int  `json:"page_size"`
	HasMore   bool `json:"has_more"`
}

// Offset returns the upstream offset of the page the cursor points at.
func (c PaginationCursor) Offset() int {
	return c.PageIndex * c.PageSize
}
