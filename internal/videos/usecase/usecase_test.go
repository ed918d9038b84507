package usecase

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/amankumarsingh77/vidhost/internal/config"
	"github.com/amankumarsingh77/vidhost/internal/media"
	"github.com/amankumarsingh77/vidhost/internal/models"
	"github.com/amankumarsingh77/vidhost/internal/videos"
	"github.com/amankumarsingh77/vidhost/pkg/logger"
	"github.com/amankumarsingh77/vidhost/pkg/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	root      string
	taken     int
	commitErr error

	mu         sync.Mutex
	removeCtxs []error
	removed    []string
	committed  map[string]string
}

func (s *fakeStorage) Reserve(kind videos.AssetKind, id string) (*videos.Slot, error) {
	if s.taken > 0 {
		s.taken--
		return nil, videos.ErrSlotTaken
	}
	dir := filepath.Join(s.root, string(kind))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	name := id + kind.Ext()
	return &videos.Slot{Kind: kind, Name: name, Path: filepath.Join(dir, name), ContentType: kind.ContentType()}, nil
}

func (s *fakeStorage) Commit(_ context.Context, slot *videos.Slot) (string, error) {
	if s.commitErr != nil {
		return "", s.commitErr
	}
	s.mu.Lock()
	if s.committed == nil {
		s.committed = map[string]string{}
	}
	s.committed[slot.Name] = slot.ContentType
	s.mu.Unlock()
	return s.URL(slot.Kind, slot.Name), nil
}

func (s *fakeStorage) Remove(ctx context.Context, kind videos.AssetKind, name string) error {
	s.mu.Lock()
	s.removeCtxs = append(s.removeCtxs, ctx.Err())
	s.removed = append(s.removed, string(kind)+"/"+name)
	s.mu.Unlock()
	return media.RemoveFile(filepath.Join(s.root, string(kind), name))
}

func (s *fakeStorage) Exists(_ context.Context, kind videos.AssetKind, name string) (bool, error) {
	info, err := os.Stat(filepath.Join(s.root, string(kind), name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

func (s *fakeStorage) URL(kind videos.AssetKind, name string) string {
	return "/uploads/" + string(kind) + "/" + name
}

// put writes a permanent file directly and returns its URL.
func (s *fakeStorage) put(t *testing.T, kind videos.AssetKind, name string) string {
	t.Helper()
	dir := filepath.Join(s.root, string(kind))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	return s.URL(kind, name)
}

type fakeProber struct {
	result *models.ProbeResult
	err    error
}

func (p *fakeProber) Probe(context.Context, string) (*models.ProbeResult, error) {
	return p.result, p.err
}

type fakeTranscoder struct {
	fail    error
	block   bool
	started chan struct{}
	spec    media.TranscodeSpec
}

func (t *fakeTranscoder) Transcode(ctx context.Context, spec media.TranscodeSpec) (*media.Job, error) {
	t.spec = spec
	return media.NewJob(func(report media.Reporter) error {
		if err := os.WriteFile(spec.Output, []byte("encoded"), 0o644); err != nil {
			return err
		}
		report(50)
		if t.block {
			close(t.started)
			<-ctx.Done()
			return media.Fail(media.KindCanceled, ctx.Err(), "transcode interrupted")
		}
		return t.fail
	}), nil
}

type fakeThumbnailer struct {
	err       error
	extracted bool
	adopted   bool
	offsetFor float64
}

func (t *fakeThumbnailer) ExtractFromVideo(_ context.Context, _, out string, duration float64) error {
	t.extracted = true
	t.offsetFor = duration
	if t.err != nil {
		return t.err
	}
	return os.WriteFile(out, []byte("jpeg"), 0o644)
}

func (t *fakeThumbnailer) AdoptUserImage(_ context.Context, staged, out string) error {
	t.adopted = true
	if t.err != nil {
		return t.err
	}
	return os.Rename(staged, out)
}

type fakeRepo struct {
	createErr error
	created   *models.Video
	videos    map[int64]*models.Video
	views     int
	likeErr   error
	deleted   []int64
}

func (r *fakeRepo) CreateVideo(_ context.Context, v *models.Video) (*models.Video, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	c := *v
	c.VideoID = 1
	r.created = &c
	return &c, nil
}

func (r *fakeRepo) GetVideoByID(_ context.Context, id int64) (*models.Video, error) {
	v, ok := r.videos[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *v
	return &c, nil
}

func (r *fakeRepo) GetVideoByAssetURL(_ context.Context, url string) (*models.Video, error) {
	var found *models.Video
	for _, v := range r.videos {
		if (v.VideoURL == url || v.ThumbnailURL == url) && (found == nil || v.VideoID < found.VideoID) {
			found = v
		}
	}
	if found == nil {
		return nil, sql.ErrNoRows
	}
	c := *found
	return &c, nil
}

func (r *fakeRepo) ListVideos(context.Context, *models.VideoFilter, *utils.Pagination) (*models.VideoList, error) {
	return &models.VideoList{TotalCount: len(r.videos)}, nil
}

func (r *fakeRepo) ListUserVideos(_ context.Context, _ uuid.UUID, status models.VideoStatus, _ *utils.Pagination) (*models.VideoList, error) {
	return &models.VideoList{Videos: []*models.Video{{Status: status}}}, nil
}

func (r *fakeRepo) UpdateVideo(_ context.Context, id int64, u *models.VideoUpdate) (*models.Video, error) {
	v := r.videos[id]
	if u.Title != nil {
		v.Title = *u.Title
	}
	return v, nil
}

func (r *fakeRepo) DeleteVideo(_ context.Context, id int64) error {
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeRepo) IncrementViews(context.Context, int64) error {
	r.views++
	return nil
}

func (r *fakeRepo) LikeVideo(context.Context, int64, uuid.UUID) error   { return r.likeErr }
func (r *fakeRepo) UnlikeVideo(context.Context, int64, uuid.UUID) error { return r.likeErr }

type fakeCache struct {
	err     error
	videos  map[string]*models.Video
	deleted []string
}

func (c *fakeCache) GetVideoCtx(_ context.Context, key string) (*models.Video, error) {
	return c.videos[key], c.err
}

func (c *fakeCache) SetVideoCtx(_ context.Context, key string, _ time.Duration, v *models.Video) error {
	if c.err != nil {
		return c.err
	}
	c.videos[key] = v
	return nil
}

func (c *fakeCache) GetListCtx(context.Context, string) (*models.VideoList, error) { return nil, c.err }

func (c *fakeCache) SetListCtx(context.Context, string, time.Duration, *models.VideoList) error {
	return c.err
}

func (c *fakeCache) DeleteCtx(_ context.Context, keys ...string) error {
	c.deleted = append(c.deleted, keys...)
	return c.err
}

func (c *fakeCache) DeletePatternCtx(_ context.Context, pattern string) (int, error) {
	c.deleted = append(c.deleted, pattern)
	return 0, c.err
}

type fixture struct {
	uc          *videoUC
	stagingDir  string
	storage     *fakeStorage
	prober      *fakeProber
	transcoder  *fakeTranscoder
	thumbnailer *fakeThumbnailer
	repo        *fakeRepo
	cache       *fakeCache
	principal   *models.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stagingDir := t.TempDir()
	validator := media.NewValidator(1<<20, false)
	stager, err := media.NewStager(stagingDir, validator)
	require.NoError(t, err)

	f := &fixture{
		stagingDir:  stagingDir,
		storage:     &fakeStorage{root: t.TempDir()},
		prober:      &fakeProber{result: &models.ProbeResult{Duration: 42, Size: 4096}},
		transcoder:  &fakeTranscoder{},
		thumbnailer: &fakeThumbnailer{},
		repo:        &fakeRepo{videos: map[int64]*models.Video{}},
		cache:       &fakeCache{videos: map[string]*models.Video{}},
		principal:   &models.Principal{UserID: uuid.New(), Role: models.UserRole, Status: models.UserStatusActive},
	}
	cfg := &config.Config{Cache: config.CacheConfig{VideoTTL: time.Minute, ListTTL: time.Minute}}
	f.uc = NewVideoUseCase(cfg, f.repo, f.cache, f.storage, videos.Pipeline{
		Validator:   validator,
		Stager:      stager,
		Prober:      f.prober,
		Transcoder:  f.transcoder,
		Thumbnailer: f.thumbnailer,
		Profile:     models.DefaultProfile(),
	}, logger.NewNopLogger()).(*videoUC)
	return f
}

func uploadFile(field, name, mime string, data []byte) *models.UploadFile {
	return &models.UploadFile{
		Field:    field,
		Filename: name,
		MimeType: mime,
		Size:     int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func (f *fixture) request(files ...*models.UploadFile) *models.UploadRequest {
	return &models.UploadRequest{
		RequestID: "req-1",
		Principal: f.principal,
		Input:     models.UploadInput{Title: "  Holiday  ", Description: "beach", Category: models.CategoryEntertainment},
		Files:     files,
	}
}

func countFiles(t *testing.T, root string) int {
	t.Helper()
	n := 0
	err := filepath.Walk(root, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

func (f *fixture) assertNoLeftovers(t *testing.T) {
	t.Helper()
	assert.Zero(t, countFiles(t, f.stagingDir), "staging dir")
	assert.Zero(t, countFiles(t, f.storage.root), "permanent dirs")
}

func videoPart() *models.UploadFile {
	return uploadFile(models.FieldVideo, "clip.mp4", "video/mp4", []byte("not really an mp4"))
}

func TestUploadVideo_GeneratesThumbnail(t *testing.T) {
	f := newFixture(t)

	video, err := f.uc.UploadVideo(context.Background(), f.request(videoPart()))
	require.NoError(t, err)

	assert.Equal(t, int64(1), video.VideoID)
	assert.Equal(t, "Holiday", video.Title)
	assert.Equal(t, int64(42), video.Duration)
	assert.Equal(t, int64(4096), video.FileSize)
	assert.Equal(t, models.VideoStatusPublished, video.Status)
	assert.Equal(t, f.principal.UserID, video.UserID)
	assert.Regexp(t, `^/uploads/videos/[0-9a-f-]{36}\.mp4$`, video.VideoURL)
	assert.Regexp(t, `^/uploads/thumbnails/[0-9a-f-]{36}\.jpg$`, video.ThumbnailURL)
	assert.Equal(t, filepath.Base(video.VideoURL)[:36], filepath.Base(video.ThumbnailURL)[:36])

	assert.True(t, f.thumbnailer.extracted)
	assert.False(t, f.thumbnailer.adopted)
	assert.Equal(t, float64(42), f.thumbnailer.offsetFor)
	assert.Equal(t, float64(42), f.transcoder.spec.Duration)
	assert.Equal(t, models.DefaultProfile(), f.transcoder.spec.Profile)

	assert.Zero(t, countFiles(t, f.stagingDir))
	assert.Equal(t, 2, countFiles(t, f.storage.root))
	assert.Contains(t, f.cache.deleted, videos.VideoKey(1))
	assert.Contains(t, f.cache.deleted, videos.ListKeyPattern)
}

func TestUploadVideo_AdoptsUserThumbnail(t *testing.T) {
	f := newFixture(t)
	thumb := uploadFile(models.FieldThumbnail, "poster.png", "image/png", []byte("png bytes"))

	video, err := f.uc.UploadVideo(context.Background(), f.request(videoPart(), thumb))
	require.NoError(t, err)

	assert.True(t, f.thumbnailer.adopted)
	assert.False(t, f.thumbnailer.extracted)
	assert.NotEmpty(t, video.ThumbnailURL)
	assert.Zero(t, countFiles(t, f.stagingDir))
	assert.Equal(t, 2, countFiles(t, f.storage.root))
}

func TestUploadVideo_RejectsBeforeStaging(t *testing.T) {
	cases := []struct {
		name  string
		files []*models.UploadFile
		input *models.UploadInput
		code  media.Code
	}{
		{
			name:  "wrong video type",
			files: []*models.UploadFile{uploadFile(models.FieldVideo, "notes.txt", "text/plain", []byte("x"))},
			code:  media.CodeInvalidVideoFormat,
		},
		{
			name: "no video",
			code: media.CodeNoVideoFile,
		},
		{
			name:  "unexpected field",
			files: []*models.UploadFile{videoPart(), uploadFile("extra", "a.mp4", "video/mp4", []byte("x"))},
			code:  media.CodeUnexpectedField,
		},
		{
			name:  "missing title",
			files: []*models.UploadFile{videoPart()},
			input: &models.UploadInput{Title: "   ", Category: models.CategoryMusic},
			code:  media.CodeMissingRequiredFields,
		},
		{
			name:  "bad category",
			files: []*models.UploadFile{videoPart()},
			input: &models.UploadInput{Title: "ok", Category: "cooking"},
			code:  media.CodeInvalidFields,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			req := f.request(tc.files...)
			if tc.input != nil {
				req.Input = *tc.input
			}

			_, err := f.uc.UploadVideo(context.Background(), req)
			require.Error(t, err)
			e, ok := media.AsError(err)
			require.True(t, ok)
			assert.Equal(t, media.KindValidation, e.Kind)
			assert.Equal(t, tc.code, e.Code)
			assert.Equal(t, string(StageReceived), e.Stage)
			assert.Nil(t, f.repo.created)
			f.assertNoLeftovers(t)
		})
	}
}

func TestUploadVideo_TranscodeFailureLeavesNothing(t *testing.T) {
	f := newFixture(t)
	f.transcoder.fail = media.Fail(media.KindIO, errors.New("exit status 1"), "ffmpeg failed")

	_, err := f.uc.UploadVideo(context.Background(), f.request(videoPart()))
	require.Error(t, err)

	e, ok := media.AsError(err)
	require.True(t, ok)
	assert.Equal(t, media.CodeUploadFailed, e.Code)
	assert.Equal(t, string(StageProbed), e.Stage)
	assert.Nil(t, f.repo.created)
	assert.False(t, f.thumbnailer.extracted)
	f.assertNoLeftovers(t)
}

func TestUploadVideo_UnreadableMedia(t *testing.T) {
	f := newFixture(t)
	f.prober.err = media.Fail(media.KindUnreadableMedia, nil, "no duration")

	_, err := f.uc.UploadVideo(context.Background(), f.request(videoPart()))
	assert.Equal(t, media.KindUnreadableMedia, media.KindOf(err))
	f.assertNoLeftovers(t)
}

func TestUploadVideo_StoreFailureRemovesPermanentFiles(t *testing.T) {
	f := newFixture(t)
	f.repo.createErr = errors.New("connection reset")

	_, err := f.uc.UploadVideo(context.Background(), f.request(videoPart()))
	require.Error(t, err)

	e, ok := media.AsError(err)
	require.True(t, ok)
	assert.Equal(t, media.KindStore, e.Kind)
	assert.Equal(t, string(StageThumbnailed), e.Stage)
	f.assertNoLeftovers(t)
}

func TestUploadVideo_ThumbnailFailure(t *testing.T) {
	f := newFixture(t)
	f.thumbnailer.err = media.Fail(media.KindIO, errors.New("bad frame"), "ffmpeg failed")

	_, err := f.uc.UploadVideo(context.Background(), f.request(videoPart()))
	e, ok := media.AsError(err)
	require.True(t, ok)
	assert.Equal(t, string(StageTranscoded), e.Stage)
	f.assertNoLeftovers(t)
}

func TestUploadVideo_CancelCleansUpOnDetachedContext(t *testing.T) {
	f := newFixture(t)
	f.transcoder.block = true
	f.transcoder.started = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-f.transcoder.started
		cancel()
	}()

	_, err := f.uc.UploadVideo(ctx, f.request(videoPart()))
	assert.Equal(t, media.KindCanceled, media.KindOf(err))
	f.assertNoLeftovers(t)

	require.NotEmpty(t, f.storage.removeCtxs)
	for _, ctxErr := range f.storage.removeCtxs {
		assert.NoError(t, ctxErr)
	}
}

func TestUploadVideo_CacheFailureStillSucceeds(t *testing.T) {
	f := newFixture(t)
	f.cache.err = errors.New("redis down")

	video, err := f.uc.UploadVideo(context.Background(), f.request(videoPart()))
	require.NoError(t, err)
	assert.Equal(t, int64(1), video.VideoID)
}

func TestUploadVideo_RetriesTakenSlot(t *testing.T) {
	f := newFixture(t)
	f.storage.taken = 2

	_, err := f.uc.UploadVideo(context.Background(), f.request(videoPart()))
	require.NoError(t, err)
	assert.Equal(t, 2, countFiles(t, f.storage.root))
}

func TestUploadVideo_GivesUpOnTakenSlots(t *testing.T) {
	f := newFixture(t)
	f.storage.taken = maxSlotAttempts

	_, err := f.uc.UploadVideo(context.Background(), f.request(videoPart()))
	assert.ErrorIs(t, err, videos.ErrSlotTaken)
	f.assertNoLeftovers(t)
}

func TestUploadVideo_PrincipalFromContext(t *testing.T) {
	f := newFixture(t)
	req := f.request(videoPart())
	req.Principal = nil

	_, err := f.uc.UploadVideo(context.Background(), req)
	assert.Error(t, err)

	ctx := utils.WithPrincipal(context.Background(), f.principal)
	video, err := f.uc.UploadVideo(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, f.principal.UserID, video.UserID)
}

func TestAttempt_CleanupIsIdempotent(t *testing.T) {
	f := newFixture(t)
	a := f.uc.newAttempt(context.Background(), "req", f.principal)
	calls := 0
	a.track("thing", func(context.Context) error {
		calls++
		return errors.New("still there")
	})

	a.cleanup()
	a.cleanup()
	assert.Equal(t, 1, calls)
	assert.Equal(t, StageCleanedUp, a.stage)
}

func TestAttempt_CleanupRunsNewestFirst(t *testing.T) {
	f := newFixture(t)
	a := f.uc.newAttempt(context.Background(), "req", f.principal)
	var order []string
	for _, name := range []string{"staged", "video", "thumbnail"} {
		n := name
		a.track(n, func(context.Context) error {
			order = append(order, n)
			return nil
		})
	}
	a.cleanup()
	assert.Equal(t, []string{"thumbnail", "video", "staged"}, order)
}

func TestUploadVideo_CommitsThumbnailType(t *testing.T) {
	f := newFixture(t)
	video, err := f.uc.UploadVideo(context.Background(), f.request(videoPart()))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", f.storage.committed[filepath.Base(video.ThumbnailURL)])
	assert.Equal(t, "video/mp4", f.storage.committed[filepath.Base(video.VideoURL)])

	f = newFixture(t)
	thumb := uploadFile(models.FieldThumbnail, "poster.png", "image/png", []byte("png bytes"))
	video, err = f.uc.UploadVideo(context.Background(), f.request(videoPart(), thumb))
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.storage.committed[filepath.Base(video.ThumbnailURL)])

	ctx := utils.WithPrincipal(context.Background(), f.principal)
	url, err := f.uc.UploadThumbnail(ctx, uploadFile(models.FieldThumbnail, "p.webp", "image/webp", []byte("webp")))
	require.NoError(t, err)
	assert.Equal(t, "image/webp", f.storage.committed[filepath.Base(url)])
}

func TestUploadThumbnail(t *testing.T) {
	f := newFixture(t)
	ctx := utils.WithPrincipal(context.Background(), f.principal)

	url, err := f.uc.UploadThumbnail(ctx, uploadFile(models.FieldThumbnail, "p.webp", "image/webp", []byte("webp")))
	require.NoError(t, err)
	assert.Regexp(t, `^/uploads/thumbnails/[0-9a-f-]{36}\.jpg$`, url)
	assert.Zero(t, countFiles(t, f.stagingDir))

	_, err = f.uc.UploadThumbnail(ctx, uploadFile(models.FieldThumbnail, "p.gif", "image/gif", []byte("gif")))
	e, ok := media.AsError(err)
	require.True(t, ok)
	assert.Equal(t, media.CodeInvalidImageFormat, e.Code)

	_, err = f.uc.UploadThumbnail(ctx, nil)
	e, ok = media.AsError(err)
	require.True(t, ok)
	assert.Equal(t, media.CodeNoThumbnailFile, e.Code)
}

func TestGetVideo(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	f.repo.videos[7] = &models.Video{VideoID: 7, UserID: owner, Status: models.VideoStatusPublished, Views: 3}
	f.repo.videos[8] = &models.Video{VideoID: 8, UserID: owner, Status: models.VideoStatusDraft}

	v, err := f.uc.GetVideo(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(4), v.Views)
	assert.Equal(t, 1, f.repo.views)

	// Cache hits still reach the durable counter.
	for i := 0; i < 4; i++ {
		v, err = f.uc.GetVideo(context.Background(), 7)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, f.repo.views)
	assert.Equal(t, int64(8), v.Views)
	assert.Equal(t, int64(8), f.cache.videos[videos.VideoKey(7)].Views)

	_, err = f.uc.GetVideo(context.Background(), 8)
	assert.ErrorIs(t, err, videos.ErrVideoNotFound)
	_, err = f.uc.GetVideo(context.Background(), 9)
	assert.ErrorIs(t, err, videos.ErrVideoNotFound)
}

func TestNormalizeFilter(t *testing.T) {
	got := normalizeFilter(&models.VideoFilter{SortBy: "id; drop table", SortOrder: "ASC", Search: " cats "})
	assert.Equal(t, "created_at", got.SortBy)
	assert.Equal(t, "asc", got.SortOrder)
	assert.Equal(t, "cats", got.Search)
	assert.Equal(t, models.VideoStatusPublished, got.Status)

	got = normalizeFilter(nil)
	assert.Equal(t, "desc", got.SortOrder)
}

func TestListUserVideos_HidesUnpublishedFromOthers(t *testing.T) {
	f := newFixture(t)
	pq := &utils.Pagination{Page: 1, Size: 10}
	other := uuid.New()

	list, err := f.uc.ListUserVideos(utils.WithPrincipal(context.Background(), f.principal), other, models.VideoStatusDraft, pq)
	require.NoError(t, err)
	assert.Equal(t, models.VideoStatusPublished, list.Videos[0].Status)

	list, err = f.uc.ListUserVideos(utils.WithPrincipal(context.Background(), f.principal), f.principal.UserID, models.VideoStatusDraft, pq)
	require.NoError(t, err)
	assert.Equal(t, models.VideoStatusDraft, list.Videos[0].Status)
}

func TestUpdateAndDeleteVideo_Ownership(t *testing.T) {
	f := newFixture(t)
	f.repo.videos[5] = &models.Video{VideoID: 5, UserID: uuid.New(), Title: "old"}
	ctx := utils.WithPrincipal(context.Background(), f.principal)
	title := "new"

	_, err := f.uc.UpdateVideo(ctx, 5, &models.VideoUpdate{Title: &title})
	assert.ErrorIs(t, err, videos.ErrForbidden)
	assert.ErrorIs(t, f.uc.DeleteVideo(ctx, 5), videos.ErrForbidden)

	_, err = f.uc.UpdateVideo(ctx, 5, &models.VideoUpdate{})
	assert.ErrorIs(t, err, videos.ErrInvalidInput)

	admin := &models.Principal{UserID: uuid.New(), Role: models.AdminRole}
	ctx = utils.WithPrincipal(context.Background(), admin)
	v, err := f.uc.UpdateVideo(ctx, 5, &models.VideoUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "new", v.Title)
	assert.Contains(t, f.cache.deleted, videos.VideoKey(5))

	require.NoError(t, f.uc.DeleteVideo(ctx, 5))
	assert.Equal(t, []int64{5}, f.repo.deleted)
	assert.ErrorIs(t, f.uc.DeleteVideo(ctx, 99), videos.ErrVideoNotFound)
}

func TestLikeVideo(t *testing.T) {
	f := newFixture(t)
	ctx := utils.WithPrincipal(context.Background(), f.principal)

	require.NoError(t, f.uc.LikeVideo(ctx, 3))
	assert.Contains(t, f.cache.deleted, videos.VideoKey(3))

	f.repo.likeErr = videos.ErrAlreadyLiked
	assert.ErrorIs(t, f.uc.LikeVideo(ctx, 3), videos.ErrAlreadyLiked)

	f.repo.likeErr = videos.ErrNotLiked
	assert.ErrorIs(t, f.uc.UnlikeVideo(ctx, 3), videos.ErrNotLiked)

	assert.Error(t, f.uc.LikeVideo(context.Background(), 3))
}

func TestCreateVideo(t *testing.T) {
	f := newFixture(t)
	draft := &models.VideoDraft{
		Title:        "  Launch  ",
		Category:     models.CategoryTechnology,
		VideoURL:     "https://cdn.example.com/launch.mp4",
		ThumbnailURL: "https://cdn.example.com/launch.jpg",
		Duration:     90,
	}

	_, err := f.uc.CreateVideo(context.Background(), draft)
	assert.Error(t, err)
	assert.Nil(t, f.repo.created)

	ctx := utils.WithPrincipal(context.Background(), f.principal)
	video, err := f.uc.CreateVideo(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, int64(1), video.VideoID)
	assert.Equal(t, "Launch", video.Title)
	assert.Equal(t, models.VideoStatusProcessing, video.Status)
	assert.Equal(t, f.principal.UserID, video.UserID)
	assert.Equal(t, int64(90), video.Duration)
	assert.Contains(t, f.cache.deleted, videos.ListKeyPattern)

	bad := []*models.VideoDraft{
		nil,
		{Title: "   ", Category: models.CategoryMusic, VideoURL: "https://cdn.example.com/a.mp4"},
		{Title: "ok", Category: "cooking", VideoURL: "https://cdn.example.com/a.mp4"},
		{Title: "ok", Category: models.CategoryMusic, VideoURL: "not a url"},
		{Title: "ok", Category: models.CategoryMusic, VideoURL: "https://cdn.example.com/a.mp4", Duration: -1},
	}
	for _, d := range bad {
		_, err = f.uc.CreateVideo(ctx, d)
		assert.ErrorIs(t, err, videos.ErrInvalidInput)
	}
}

func TestDeleteVideo_SkipsForeignURLs(t *testing.T) {
	f := newFixture(t)
	ctx := utils.WithPrincipal(context.Background(), f.principal)
	thumb := f.storage.put(t, videos.AssetThumbnail, "local.jpg")
	f.repo.videos[6] = &models.Video{
		VideoID:      6,
		UserID:       f.principal.UserID,
		VideoURL:     "https://cdn.example.com/elsewhere.mp4",
		ThumbnailURL: thumb,
	}

	require.NoError(t, f.uc.DeleteVideo(ctx, 6))
	require.Eventually(t, func() bool {
		f.storage.mu.Lock()
		defer f.storage.mu.Unlock()
		return len(f.storage.removed) == 1
	}, time.Second, 10*time.Millisecond)
	f.storage.mu.Lock()
	assert.Equal(t, []string{"thumbnails/local.jpg"}, f.storage.removed)
	f.storage.mu.Unlock()
}

func TestDeleteFile(t *testing.T) {
	f := newFixture(t)
	owned := f.storage.put(t, videos.AssetVideo, "owned.mp4")
	f.storage.put(t, videos.AssetThumbnail, "orphan.jpg")
	f.storage.put(t, videos.AssetVideo, "others.mp4")
	f.repo.videos[10] = &models.Video{VideoID: 10, UserID: f.principal.UserID, VideoURL: owned}
	f.repo.videos[11] = &models.Video{VideoID: 11, UserID: uuid.New(), VideoURL: f.storage.URL(videos.AssetVideo, "others.mp4")}

	user := utils.WithPrincipal(context.Background(), f.principal)
	admin := utils.WithPrincipal(context.Background(), &models.Principal{UserID: uuid.New(), Role: models.AdminRole})

	assert.Error(t, f.uc.DeleteFile(context.Background(), videos.AssetVideo, "owned.mp4"))
	assert.ErrorIs(t, f.uc.DeleteFile(user, "avatars", "owned.mp4"), videos.ErrInvalidInput)
	assert.ErrorIs(t, f.uc.DeleteFile(user, videos.AssetVideo, "missing.mp4"), videos.ErrFileNotFound)
	assert.ErrorIs(t, f.uc.DeleteFile(user, videos.AssetVideo, "others.mp4"), videos.ErrForbidden)
	assert.ErrorIs(t, f.uc.DeleteFile(user, videos.AssetThumbnail, "orphan.jpg"), videos.ErrForbidden)
	assert.Equal(t, 3, countFiles(t, f.storage.root))

	require.NoError(t, f.uc.DeleteFile(user, videos.AssetVideo, "owned.mp4"))
	assert.Contains(t, f.cache.deleted, videos.VideoKey(10))
	require.NoError(t, f.uc.DeleteFile(admin, videos.AssetThumbnail, "orphan.jpg"))
	require.NoError(t, f.uc.DeleteFile(admin, videos.AssetVideo, "others.mp4"))
	assert.Zero(t, countFiles(t, f.storage.root))
	assert.ErrorIs(t, f.uc.DeleteFile(admin, videos.AssetVideo, "owned.mp4"), videos.ErrFileNotFound)
}
