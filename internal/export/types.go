package export

const (
	FormatEDL = "edl"
	FormatMP4 = "mp4"
)

type ExportRequest struct {
	ProjectID string  `json:"project_id"`
	Format    string  `json:"format"`
	FrameRate float64 `json:"frame_rate"`
	OutputDir string  `json:"output_dir"`
}

// ResolvedCut is one timeline cut with its clip's media path attached,
// ready for EDL generation or rendering. Times are clip-local seconds.
type ResolvedCut struct {
	ClipName  string
	MediaPath string
	StartS    float64
	EndS      float64
}

type ExportResponse struct {
	Status       string   `json:"status"`
	Format       string   `json:"format"`
	OutputPath   string   `json:"output_path"`
	CutCount     int      `json:"cut_count"`
	MissingClips []string `json:"missing_clips,omitempty"`
}
