package file

import "errors"

var (
	// ErrFileNotFound signals that the file metadata record is absent.
	ErrFileNotFound = errors.New("file not found")
	// ErrCustomerNotFound indicates the target customer does not exist.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrMissingOnDisk reports metadata/blob drift: the record exists but the
	// blob does not.
	ErrMissingOnDisk = errors.New("file missing from blob store")
	// ErrStorage wraps I/O failures in the blob store.
	ErrStorage = errors.New("blob storage failure")
)
