package model

// Quality selects the renderer's resolution and frame rate.
type Quality string

const (
	QualityLow    Quality = "l"
	QualityMedium Quality = "m"
	QualityHigh   Quality = "h"
	Quality4K     Quality = "k"
)

// DefaultQuality is substituted for any code outside the known set.
const DefaultQuality = QualityHigh

const (
	DefaultWatermarkText = "© Vibe Ask"
	DefaultFontSize      = 24
	DefaultOpacity       = 0.7
)

// Options holds user-configurable runtime options as resolved from flags,
// environment and config file.
type Options struct {
	AnimationFile string // Path to the Manim script, as given by the user.
	SceneName     string // Scene class to render; also the output basename.
	Quality       Quality

	OutDir   string // Empty means the animation file's directory.
	MediaDir string // Empty means <script dir>/media.

	NoWatermark    bool
	KeepOriginal   bool
	WatermarkText  string
	WatermarkImage string   // Pre-made overlay; when set no image is generated.
	FontSize       int
	Opacity        float64
	FontPaths      []string // Candidates tried before the built-in font.

	RendererBinary string // Name or path of manim.
	FFmpegBinary   string // Name or path of ffmpeg.

	Verbose bool
	NoUI    bool // Disable TUI when true
}

// RenderedVideo is the file the renderer produced, as found on disk.
type RenderedVideo struct {
	Path     string
	Fallback bool // True when no path contained the quality fragment.
}

// MediaInfo is what ffprobe reports about a video. Zero values mean unknown.
type MediaInfo struct {
	DurationSec float64
	Width       int
	Height      int
}

// OutputVideo captures the final artifact.
type OutputVideo struct {
	OutputPath  string
	Bytes       int64
	Watermarked bool
}
