package domain

type VideoStatus string

const (
	VideoUploading VideoStatus = "UPLOADING"
	VideoPublished VideoStatus = "PUBLISHED"
)

// Video: то, что комната знает о загруженном ролике.
// Path: путь для плеера, а не ссылка, которую прислал клиент.
type Video struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Title string `json:"title"`
}
