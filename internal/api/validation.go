package api

import "fmt"

// Validate checks that CategoryUpdateRequest names a category and carries at
// least one change.
func (r *CategoryUpdateRequest) Validate() error {
	if r.CategoryName == "" {
		return fmt.Errorf("categoryName is required")
	}
	if len(r.AddIDs) == 0 && len(r.RemoveIDs) == 0 {
		return fmt.Errorf("at least one of addIds or removeIds is required")
	}
	return nil
}

// Validate checks that CompareRequest carries at least one bond id.
func (r *CompareRequest) Validate() error {
	if len(r.BondIDs) == 0 {
		return fmt.Errorf("bondIds is required")
	}
	return nil
}
