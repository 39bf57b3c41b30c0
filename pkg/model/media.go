package model

import "io"

// FileState is the processing status the provider reports for an uploaded file.
type FileState string

const (
	FileStatePending    FileState = "PENDING"
	FileStateProcessing FileState = "PROCESSING"
	FileStateActive     FileState = "ACTIVE"
	FileStateFailed     FileState = "FAILED"
)

// MediaAsset is the provider-side handle for an uploaded recording.
type MediaAsset struct {
	Name        string    `json:"name"`
	URI         string    `json:"uri"`
	MIMEType    string    `json:"mimeType"`
	DisplayName string    `json:"displayName"`
	State       FileState `json:"state"`
}

// Upload is an inbound recording before it has been staged.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}
