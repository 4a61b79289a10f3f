package api

// CategoryUpdateRequest is the payload for a category maintenance batch.
type CategoryUpdateRequest struct {
	CategoryName string  `json:"categoryName"`
	AddIDs       []int64 `json:"addIds"`
	RemoveIDs    []int64 `json:"removeIds"`
}

// CompareRequest is the payload for a multi-bond comparison.
type CompareRequest struct {
	BondIDs []int64 `json:"bondIds"`
}
