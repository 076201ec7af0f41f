package models

import "time"

// Image is an image record. The binary lives in object storage under StorageKey.
type Image struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	ImageURL   string    `db:"image_url" json:"imageUrl"`
	StorageKey string    `db:"storage_key" json:"-"`
	FolderID   string    `db:"folder_id" json:"folderId"`
	UserID     string    `db:"user_id" json:"userId"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// ImageView is an image joined with its folder name and owner email.
// FolderName is nil once the folder has been deleted.
type ImageView struct {
	Image
	FolderName *string `db:"folder_name" json:"folderName"`
	OwnerEmail string  `db:"owner_email" json:"ownerEmail,omitempty"`
}
