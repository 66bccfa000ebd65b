package models

import "time"

// Note is a content unit. IsDeleted is a soft-delete flag only: a flagged
// note stays in its owner's reference set until it is removed for real.
type Note struct {
	ID         string    `json:"id"`
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	IsPinned   bool      `json:"isPinned"`
	IsStarred  bool      `json:"isStarred"`
	IsArchived bool      `json:"isArchived"`
	IsDeleted  bool      `json:"isDeleted"`
	FolderID   *string   `json:"folderId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
