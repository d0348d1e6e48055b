package photos

// MediaItem mirrors the mediaItems resource of the Photos Library API,
// limited to the fields the CLI displays.
type MediaItem struct {
	ID            string        `json:"id"`
	Description   string        `json:"description,omitempty"`
	ProductURL    string        `json:"productUrl,omitempty"`
	BaseURL       string        `json:"baseUrl,omitempty"`
	MimeType      string        `json:"mimeType,omitempty"`
	Filename      string        `json:"filename,omitempty"`
	MediaMetadata MediaMetadata `json:"mediaMetadata,omitempty"`
}

type MediaMetadata struct {
	CreationTime string `json:"creationTime,omitempty"`
	Width        string `json:"width,omitempty"`
	Height       string `json:"height,omitempty"`
}

type listResponse struct {
	MediaItems    []MediaItem `json:"mediaItems"`
	NextPageToken string      `json:"nextPageToken"`
}

// NewMediaItem references a previously uploaded blob when finalizing the
// library record.
type NewMediaItem struct {
	Description     string          `json:"description,omitempty"`
	SimpleMediaItem SimpleMediaItem `json:"simpleMediaItem"`
}

type SimpleMediaItem struct {
	UploadToken string `json:"uploadToken"`
	FileName    string `json:"fileName,omitempty"`
}

type batchCreateRequest struct {
	NewMediaItems []NewMediaItem `json:"newMediaItems"`
}

type batchCreateResponse struct {
	NewMediaItemResults []CreateResult `json:"newMediaItemResults"`
}

// CreateResult reports the outcome of one item in a batch create.
type CreateResult struct {
	UploadToken string     `json:"uploadToken"`
	Status      Status     `json:"status"`
	MediaItem   *MediaItem `json:"mediaItem,omitempty"`
}

type Status struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the item record was created. The API uses the
// google.rpc.Status convention where code 0 (omitted) is success.
func (r *CreateResult) OK() bool {
	return r.Status.Code == 0
}
