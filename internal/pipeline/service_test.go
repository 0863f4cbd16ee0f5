package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manimark/internal/model"
	"manimark/internal/progress"
	"manimark/internal/util"
	"manimark/internal/watermark"
)

type recordingReporter struct {
	updates []progress.Update
	results []progress.Result
	logs    []progress.Log
}

func (r *recordingReporter) Update(u progress.Update) {
	r.updates = append(r.updates, u)
}
func (r *recordingReporter) Log(l progress.Log) {
	r.logs = append(r.logs, l)
}
func (r *recordingReporter) Result(res progress.Result) {
	r.results = append(r.results, res)
}

// fakeRunner simulates manim writing media/videos/<stem>/<fragment>/<Scene>.mp4
// and ffmpeg writing its last argument.
type fakeRunner struct {
	t          *testing.T
	fragment   string // empty means 1080p60
	renderData []byte
	renderFail bool
	skipRender bool
	calls      []util.CmdSpec
}

func (f *fakeRunner) Run(_ context.Context, spec util.CmdSpec) (util.CmdResult, error) {
	f.calls = append(f.calls, spec)
	switch spec.Path {
	case "manim":
		if f.renderFail {
			err := errors.New("exit status 1")
			return util.CmdResult{Stderr: []byte("SyntaxError: invalid syntax\n"), Code: 1, Err: err}, err
		}
		if f.skipRender {
			return util.CmdResult{}, nil
		}
		require.Len(f.t, spec.Args, 3)
		script, scene := spec.Args[1], spec.Args[2]
		stem := strings.TrimSuffix(filepath.Base(script), filepath.Ext(script))
		frag := f.fragment
		if frag == "" {
			frag = "1080p60"
		}
		dir := filepath.Join(spec.Dir, "media", "videos", stem, frag)
		require.NoError(f.t, os.MkdirAll(dir, 0o755))
		require.NoError(f.t, os.WriteFile(filepath.Join(dir, scene+".mp4"), f.renderData, 0o644))
		if spec.StderrLine != nil {
			spec.StderrLine("Animation 0 : Partial movie file written in 00:01,  50%|#####     | 15/30 [00:01<00:01, 15.00it/s]")
		}
		return util.CmdResult{}, nil
	case "ffmpeg":
		out := spec.Args[len(spec.Args)-1]
		return util.CmdResult{}, os.WriteFile(out, []byte("watermarked"), 0o644)
	}
	return util.CmdResult{}, errors.New("unexpected tool path: " + spec.Path)
}

func (f *fakeRunner) callsTo(path string) []util.CmdSpec {
	var out []util.CmdSpec
	for _, c := range f.calls {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// noRemoveFs refuses to delete the file at deny.
type noRemoveFs struct {
	afero.Fs
	deny string
}

func (f noRemoveFs) Remove(name string) error {
	if filepath.Clean(name) == f.deny {
		return os.ErrPermission
	}
	return f.Fs.Remove(name)
}

func writeScript(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "scene.py")
	require.NoError(t, os.WriteFile(p, []byte("from manim import *\n"), 0o644))
	return p
}

func newTestService(fr *fakeRunner, rep progress.Reporter, o model.Options) *Service {
	return NewService(WithOptions(o), WithRunner(fr), WithReporter(rep))
}

func TestNewService_Defaults(t *testing.T) {
	s := NewService(WithOptions(model.Options{Quality: "z", Opacity: 3}))
	assert.Equal(t, "manim", s.rendererPath)
	assert.Equal(t, "ffmpeg", s.ffmpegPath)
	assert.Equal(t, model.QualityHigh, s.opts.Quality)
	assert.Equal(t, 1.0, s.opts.Opacity)
	assert.Equal(t, model.DefaultFontSize, s.opts.FontSize)
	assert.Equal(t, watermark.DefaultFontPaths, s.opts.FontPaths)
	assert.NotNil(t, s.runner)
	assert.NotNil(t, s.reporter)
	assert.NotNil(t, s.fs)

	s2 := NewService(WithRendererPath("/opt/manim"), WithFFmpegPath("/opt/ffmpeg"))
	assert.Equal(t, "/opt/manim", s2.rendererPath)
	assert.Equal(t, "/opt/ffmpeg", s2.ffmpegPath)
}

func TestNormalize(t *testing.T) {
	o, notes := Normalize(model.Options{Quality: "X", FontSize: -3, Opacity: -0.5})
	assert.Equal(t, model.QualityHigh, o.Quality)
	assert.Equal(t, model.DefaultFontSize, o.FontSize)
	assert.Equal(t, 0.0, o.Opacity)
	assert.Len(t, notes, 3)

	o, notes = Normalize(model.Options{Quality: "l", FontSize: 40, Opacity: 0.3, FontPaths: []string{"/a.ttf"}})
	assert.Equal(t, model.QualityLow, o.Quality)
	assert.Equal(t, 40, o.FontSize)
	assert.Equal(t, 0.3, o.Opacity)
	assert.Equal(t, []string{"/a.ttf"}, o.FontPaths)
	assert.Empty(t, notes)
}

func TestPlan(t *testing.T) {
	script := writeScript(t)
	dir := filepath.Dir(script)
	s := NewService(WithOptions(model.Options{
		AnimationFile: script,
		SceneName:     "Intro",
		Quality:       model.QualityMedium,
		Opacity:       0.5,
	}))

	pl, err := s.Plan()
	require.NoError(t, err)
	assert.Equal(t, []string{"manim", "-pqm", script, "Intro"}, pl.RenderCommand)
	assert.Equal(t, dir, pl.WorkDir)
	assert.Equal(t, filepath.Join(dir, "media", "videos", "scene", "720p30", "Intro.mp4"), pl.ExpectedVideo)
	assert.Equal(t, filepath.Join(dir, "Intro.mp4"), pl.OutputPath)
	require.NotNil(t, pl.Watermark)
	assert.True(t, pl.Watermark.Generate)
	assert.Equal(t, filepath.Join(dir, watermark.DefaultFileName), pl.Watermark.Image)
	assert.Contains(t, pl.Watermark.CompositeCommand, "[1:v]format=rgba,colorchannelmixer=aa=0.5[wm];[0:v][wm]overlay=W-w-10:H-h-10")

	s = NewService(WithOptions(model.Options{AnimationFile: script, SceneName: "Intro", NoWatermark: true}))
	pl, err = s.Plan()
	require.NoError(t, err)
	assert.Nil(t, pl.Watermark)

	_, err = NewService(WithOptions(model.Options{AnimationFile: script})).Plan()
	require.Error(t, err)
}

func TestRun_NoWatermarkCopiesRender(t *testing.T) {
	script := writeScript(t)
	outDir := filepath.Join(t.TempDir(), "out")
	fr := &fakeRunner{t: t, renderData: []byte("rendered-bytes")}
	rep := &recordingReporter{}

	res, err := newTestService(fr, rep, model.Options{
		AnimationFile: script,
		SceneName:     "Intro",
		OutDir:        outDir,
		NoWatermark:   true,
	}).Run(context.Background())
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(outDir, "Intro.mp4"))
	require.NoError(t, err)
	assert.Equal(t, []byte("rendered-bytes"), got)
	assert.Empty(t, fr.callsTo("ffmpeg"))
	assert.False(t, res.Output.Watermarked)
	assert.Equal(t, int64(len("rendered-bytes")), res.Output.Bytes)

	// The original stays in place when nothing was composited.
	_, err = os.Stat(res.Rendered.Path)
	assert.NoError(t, err)

	last := rep.updates[len(rep.updates)-1]
	assert.Equal(t, progress.StageCompleted, last.Stage)
	assert.Contains(t, last.Message, "Saved:")
}

func TestRun_WatermarksAndRemovesOriginal(t *testing.T) {
	script := writeScript(t)
	dir := filepath.Dir(script)
	fr := &fakeRunner{t: t, renderData: []byte("rendered")}
	rep := &recordingReporter{}

	res, err := newTestService(fr, rep, model.Options{
		AnimationFile: script,
		SceneName:     "Intro",
		Opacity:       0.7,
	}).Run(context.Background())
	require.NoError(t, err)

	manim := fr.callsTo("manim")
	require.Len(t, manim, 1)
	assert.Equal(t, []string{"-pqh", script, "Intro"}, manim[0].Args)
	assert.Equal(t, dir, manim[0].Dir)

	ff := fr.callsTo("ffmpeg")
	require.Len(t, ff, 1)
	assert.Contains(t, ff[0].Args, "[1:v]format=rgba,colorchannelmixer=aa=0.7[wm];[0:v][wm]overlay=W-w-10:H-h-10")
	assert.Contains(t, ff[0].Args, filepath.Join(dir, watermark.DefaultFileName))

	_, err = os.Stat(filepath.Join(dir, watermark.DefaultFileName))
	assert.NoError(t, err, "watermark image should be created")
	require.NotNil(t, res.Watermark)

	out, err := os.ReadFile(filepath.Join(dir, "Intro.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "watermarked", string(out))
	assert.True(t, res.Output.Watermarked)

	assert.True(t, res.OriginalRemoved)
	_, err = os.Stat(res.Rendered.Path)
	assert.True(t, os.IsNotExist(err), "original render should be removed")

	var sawRenderProgress bool
	for _, u := range rep.updates {
		if u.Stage == progress.StageRender && u.Percent == 50 {
			sawRenderProgress = true
		}
	}
	assert.True(t, sawRenderProgress)
}

func TestRun_KeepOriginal(t *testing.T) {
	script := writeScript(t)
	fr := &fakeRunner{t: t, renderData: []byte("rendered")}

	res, err := newTestService(fr, &recordingReporter{}, model.Options{
		AnimationFile: script,
		SceneName:     "Intro",
		KeepOriginal:  true,
	}).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.OriginalRemoved)
	_, err = os.Stat(res.Rendered.Path)
	assert.NoError(t, err)
}

func TestRun_RenderFailureSkipsComposite(t *testing.T) {
	script := writeScript(t)
	fr := &fakeRunner{t: t, renderFail: true}
	rep := &recordingReporter{}

	_, err := newTestService(fr, rep, model.Options{AnimationFile: script, SceneName: "Broken"}).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRender)
	assert.Contains(t, err.Error(), "SyntaxError")
	assert.Empty(t, fr.callsTo("ffmpeg"))

	require.NotEmpty(t, rep.results)
	assert.Error(t, rep.results[len(rep.results)-1].Err)
	assert.Equal(t, progress.StageError, rep.updates[len(rep.updates)-1].Stage)
}

func TestRun_RenderedVideoMissing(t *testing.T) {
	script := writeScript(t)
	fr := &fakeRunner{t: t, skipRender: true}

	_, err := newTestService(fr, &recordingReporter{}, model.Options{AnimationFile: script, SceneName: "Ghost"}).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, fr.callsTo("ffmpeg"))
}

func TestRun_InputMissing(t *testing.T) {
	fr := &fakeRunner{t: t}
	_, err := newTestService(fr, &recordingReporter{}, model.Options{
		AnimationFile: filepath.Join(t.TempDir(), "missing.py"),
		SceneName:     "Intro",
	}).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInputNotFound)
	assert.Empty(t, fr.calls)
}

func TestRun_FallbackDiscoveryWarns(t *testing.T) {
	script := writeScript(t)
	fr := &fakeRunner{t: t, fragment: "480p15", renderData: []byte("low")}
	rep := &recordingReporter{}

	res, err := newTestService(fr, rep, model.Options{
		AnimationFile: script,
		SceneName:     "Intro",
		NoWatermark:   true,
		OutDir:        t.TempDir(),
	}).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Rendered.Fallback)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "1080p60")
}

func TestRun_MissingFontFallsBackToBuiltin(t *testing.T) {
	script := writeScript(t)
	fr := &fakeRunner{t: t, renderData: []byte("rendered")}

	res, err := newTestService(fr, &recordingReporter{}, model.Options{
		AnimationFile: script,
		SceneName:     "Intro",
		FontPaths:     []string{filepath.Join(t.TempDir(), "nope.ttf")},
	}).Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res.Watermark)
	assert.Equal(t, watermark.BuiltinFont, res.Watermark.Font)
}

func TestRun_SuppliedWatermarkMissing(t *testing.T) {
	script := writeScript(t)
	fr := &fakeRunner{t: t, renderData: []byte("rendered")}

	_, err := newTestService(fr, &recordingReporter{}, model.Options{
		AnimationFile:  script,
		SceneName:      "Intro",
		WatermarkImage: filepath.Join(t.TempDir(), "logo.png"),
	}).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWatermark)
	assert.Empty(t, fr.callsTo("ffmpeg"))
}

func TestRun_CleanupFailureWarns(t *testing.T) {
	script := writeScript(t)
	outDir := t.TempDir()
	rendered := filepath.Join(filepath.Dir(script), "media", "videos", "scene", "1080p60", "Intro.mp4")
	fr := &fakeRunner{t: t, renderData: []byte("rendered")}

	res, err := NewService(
		WithOptions(model.Options{AnimationFile: script, SceneName: "Intro", OutDir: outDir}),
		WithRunner(fr),
		WithReporter(&recordingReporter{}),
		WithFs(noRemoveFs{Fs: afero.NewOsFs(), deny: rendered}),
	).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.OriginalRemoved)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "could not remove original")
	assert.Equal(t, rendered, res.Rendered.Path)
	assert.FileExists(t, rendered)
	assert.True(t, res.Output.Watermarked)
}
