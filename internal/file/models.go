package file

import (
	"time"

	"github.com/google/uuid"
)

// File is the metadata record for a stored blob. CustomerID is set once at
// creation and never changes; FilePath is the derived physical locator inside
// the blob store, never client-controlled.
type File struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	FileName   string    `json:"file_name"`
	FilePath   string    `json:"file_path"`
	FileType   string    `json:"file_type"`
	UploadDate time.Time `json:"upload_date"`
	UpdateDate time.Time `json:"update_date"`
}
