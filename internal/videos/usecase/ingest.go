package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/amankumarsingh77/vidhost/internal/media"
	"github.com/amankumarsingh77/vidhost/internal/metrics"
	"github.com/amankumarsingh77/vidhost/internal/models"
	"github.com/amankumarsingh77/vidhost/internal/videos"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Stage is a state of one upload attempt.
type Stage string

const (
	StageReceived    Stage = "received"
	StageValidated   Stage = "validated"
	StageProbed      Stage = "probed"
	StageTranscoded  Stage = "transcoded"
	StageThumbnailed Stage = "thumbnailed"
	StagePublished   Stage = "published"
	StageFailed      Stage = "failed"
	StageCleanedUp   Stage = "cleaned_up"
)

const (
	maxSlotAttempts = 3
	cleanupTimeout  = 30 * time.Second
	progressLogStep = 10
)

type artifact struct {
	what   string
	remove func(ctx context.Context) error
}

// attempt carries one upload through the pipeline and remembers every file it created.
type attempt struct {
	uc         *videoUC
	ctx        context.Context
	requestID  string
	userID     string
	stage      Stage
	failedAt   Stage
	stageStart time.Time
	artifacts  []artifact

	media     *models.StagedFile
	poster    *models.StagedFile
	probe     *models.ProbeResult
	videoSlot *videos.Slot
	thumbSlot *videos.Slot
}

func (u *videoUC) newAttempt(ctx context.Context, requestID string, principal *models.Principal) *attempt {
	a := &attempt{
		uc:         u,
		ctx:        ctx,
		requestID:  requestID,
		stage:      StageReceived,
		stageStart: time.Now(),
	}
	if principal != nil {
		a.userID = principal.UserID.String()
	}
	return a
}

func (a *attempt) fields(kv ...interface{}) []interface{} {
	return append([]interface{}{"request_id", a.requestID, "user_id", a.userID}, kv...)
}

func (a *attempt) advance(next Stage) {
	metrics.StageDuration.WithLabelValues(string(a.stage)).Observe(time.Since(a.stageStart).Seconds())
	a.uc.logger.Infow("upload stage", a.fields("from", a.stage, "to", next)...)
	a.stage = next
	a.stageStart = time.Now()
}

func (a *attempt) track(what string, remove func(ctx context.Context) error) {
	a.artifacts = append(a.artifacts, artifact{what: what, remove: remove})
}

// fail moves the attempt to Failed and classifies err against the stage that was running.
func (a *attempt) fail(err error) error {
	classified := &media.Error{Kind: media.KindIO, Code: media.CodeUploadFailed, Err: err}
	if e, ok := media.AsError(err); ok {
		c := *e
		classified = &c
	}
	classified.Stage = string(a.stage)

	a.failedAt = a.stage
	a.stage = StageFailed
	a.uc.logger.Errorw("upload failed", a.fields(
		"stage", a.failedAt,
		"kind", classified.Kind,
		"code", classified.Code,
		"cause", err,
	)...)
	return pkgerrors.WithStack(classified)
}

// cleanup removes everything this attempt created, newest first. It runs on a
// context detached from the request so a client disconnect still cleans up.
// Individual failures are logged and counted, never returned.
func (a *attempt) cleanup() {
	if len(a.artifacts) == 0 {
		a.stage = StageCleanedUp
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(a.ctx), cleanupTimeout)
	defer cancel()

	var errs error
	for i := len(a.artifacts) - 1; i >= 0; i-- {
		art := a.artifacts[i]
		if err := art.remove(ctx); err != nil {
			metrics.CleanupFailures.Inc()
			a.uc.logger.Warnw("upload cleanup failed", a.fields("artifact", art.what, "error", err)...)
			errs = multierr.Append(errs, err)
		}
	}
	a.artifacts = nil
	a.stage = StageCleanedUp
	a.uc.logger.Infow("upload cleaned up", a.fields("failed_at", a.failedAt, "cleanup_errors", len(multierr.Errors(errs)))...)
}

func (a *attempt) stageFile(ctx context.Context, f *models.UploadFile, role models.FileRole) (*models.StagedFile, error) {
	body, err := f.Open()
	if err != nil {
		return nil, media.Fail(media.KindIO, err, "open %s part", f.Field)
	}
	defer body.Close()

	staged, err := a.uc.pipeline.Stager.Stage(ctx, role, f.Filename, f.MimeType, body)
	if err != nil {
		return nil, err
	}
	a.track("staged "+f.Field+" "+staged.ID, func(context.Context) error {
		return a.uc.pipeline.Stager.Release(staged)
	})
	return staged, nil
}

// reserve claims permanent names for the given kinds under one fresh id.
func (a *attempt) reserve(kinds ...videos.AssetKind) ([]*videos.Slot, error) {
	var lastErr error
	for i := 0; i < maxSlotAttempts; i++ {
		id := uuid.NewString()
		slots := make([]*videos.Slot, 0, len(kinds))
		lastErr = nil
		for _, kind := range kinds {
			slot, err := a.uc.storage.Reserve(kind, id)
			if err != nil {
				lastErr = err
				break
			}
			slots = append(slots, slot)
		}
		if lastErr == nil {
			for _, slot := range slots {
				s := slot
				a.track(string(s.Kind)+" "+s.Name, func(ctx context.Context) error {
					return a.uc.storage.Remove(ctx, s.Kind, s.Name)
				})
			}
			return slots, nil
		}
		if !errors.Is(lastErr, videos.ErrSlotTaken) {
			break
		}
	}
	return nil, media.Fail(media.KindIO, lastErr, "reserve permanent slot")
}

func (a *attempt) transcode(ctx context.Context) error {
	started := time.Now()
	job, err := a.uc.pipeline.Transcoder.Transcode(ctx, media.TranscodeSpec{
		Input:    a.media.Path,
		Output:   a.videoSlot.Path,
		Profile:  a.uc.pipeline.Profile,
		Duration: float64(a.probe.Duration),
	})
	if err != nil {
		return err
	}
	a.uc.logger.Infow("transcode started", a.fields("resolution", a.uc.pipeline.Profile.Resolution(), "source_bitrate", a.probe.Bitrate)...)

	next := 0
	for p := range job.Progress() {
		if p >= next {
			a.uc.logger.Debugw("transcode progress", a.fields("percent", p)...)
			next = (p/progressLogStep + 1) * progressLogStep
		}
	}
	err = job.Wait()
	metrics.TranscodeDuration.Observe(time.Since(started).Seconds())
	return err
}

// adoptPoster moves the staged poster into the thumbnail slot as is, so the slot takes its type.
func (a *attempt) adoptPoster(ctx context.Context) error {
	if err := a.uc.pipeline.Thumbnailer.AdoptUserImage(ctx, a.poster.Path, a.thumbSlot.Path); err != nil {
		return err
	}
	if a.poster.MimeType != "" {
		a.thumbSlot.ContentType = a.poster.MimeType
	}
	return nil
}

func (a *attempt) thumbnail(ctx context.Context) error {
	if a.poster != nil {
		return a.adoptPoster(ctx)
	}
	return a.uc.pipeline.Thumbnailer.ExtractFromVideo(ctx, a.videoSlot.Path, a.thumbSlot.Path, float64(a.probe.Duration))
}

// releaseStaged drops the temp files of a published attempt.
func (a *attempt) releaseStaged() {
	for _, f := range []*models.StagedFile{a.media, a.poster} {
		if f == nil {
			continue
		}
		if err := a.uc.pipeline.Stager.Release(f); err != nil {
			a.uc.logger.Warnw("release staged file", a.fields("staged_id", f.ID, "error", err)...)
		}
	}
	a.artifacts = nil
}

// UploadVideo runs the ingestion pipeline. The catalog insert is the single commit
// point. Nothing created before it survives a failure.
func (u *videoUC) UploadVideo(ctx context.Context, req *models.UploadRequest) (video *models.Video, err error) {
	principal, err := u.principal(ctx, req.Principal)
	if err != nil {
		return nil, err
	}
	a := u.newAttempt(ctx, req.RequestID, principal)
	defer func() {
		if err != nil {
			a.cleanup()
			recordOutcome(err)
		}
	}()

	// Received -> Validated
	if err = u.pipeline.Validator.ValidateFiles(req.Files); err != nil {
		return nil, a.fail(err)
	}
	if err = u.pipeline.Validator.ValidateInput(ctx, &req.Input); err != nil {
		return nil, a.fail(err)
	}
	a.advance(StageValidated)

	// Validated -> Probed
	if a.media, err = a.stageFile(ctx, req.File(models.FieldVideo), models.RoleMedia); err != nil {
		return nil, a.fail(err)
	}
	if pf := req.File(models.FieldThumbnail); pf != nil {
		if a.poster, err = a.stageFile(ctx, pf, models.RolePoster); err != nil {
			return nil, a.fail(err)
		}
	}
	if a.probe, err = u.pipeline.Prober.Probe(ctx, a.media.Path); err != nil {
		return nil, a.fail(err)
	}
	a.advance(StageProbed)

	// Probed -> Transcoded
	slots, err := a.reserve(videos.AssetVideo, videos.AssetThumbnail)
	if err != nil {
		return nil, a.fail(err)
	}
	a.videoSlot, a.thumbSlot = slots[0], slots[1]
	if err = a.transcode(ctx); err != nil {
		return nil, a.fail(err)
	}
	a.advance(StageTranscoded)

	// Transcoded -> Thumbnailed
	if err = a.thumbnail(ctx); err != nil {
		return nil, a.fail(err)
	}
	a.advance(StageThumbnailed)

	// Thumbnailed -> Published
	videoURL, err := u.storage.Commit(ctx, a.videoSlot)
	if err != nil {
		return nil, a.fail(media.Fail(media.KindIO, err, "commit video"))
	}
	thumbURL, err := u.storage.Commit(ctx, a.thumbSlot)
	if err != nil {
		return nil, a.fail(media.Fail(media.KindIO, err, "commit thumbnail"))
	}

	created, err := u.videoRepo.CreateVideo(ctx, &models.Video{
		UserID:       principal.UserID,
		Title:        req.Input.Title,
		Description:  req.Input.Description,
		Category:     req.Input.Category,
		VideoURL:     videoURL,
		ThumbnailURL: thumbURL,
		Duration:     a.probe.Duration,
		FileSize:     a.probe.Size,
		Status:       models.VideoStatusPublished,
	})
	if err != nil {
		return nil, a.fail(media.Fail(media.KindStore, err, "insert video"))
	}
	a.advance(StagePublished)
	a.releaseStaged()

	u.invalidate(ctx, created.VideoID)
	metrics.Uploads.WithLabelValues("published", "").Inc()
	u.logger.Infow("audit", a.fields("event", "video_uploaded", "video_id", created.VideoID)...)
	return created, nil
}

// UploadThumbnail stores a standalone poster image and returns its URL.
func (u *videoUC) UploadThumbnail(ctx context.Context, file *models.UploadFile) (url string, err error) {
	principal, err := u.principal(ctx, nil)
	if err != nil {
		return "", err
	}
	a := u.newAttempt(ctx, "", principal)
	defer func() {
		if err != nil {
			a.cleanup()
		}
	}()

	if file == nil {
		return "", a.fail(media.Reject(media.CodeNoThumbnailFile, ""))
	}
	if file.Field != models.FieldThumbnail {
		return "", a.fail(media.Reject(media.CodeUnexpectedField, file.Field))
	}
	if err = u.pipeline.Validator.Validate(models.RolePoster, file.MimeType); err != nil {
		return "", a.fail(err)
	}
	a.advance(StageValidated)

	if a.poster, err = a.stageFile(ctx, file, models.RolePoster); err != nil {
		return "", a.fail(err)
	}
	slots, err := a.reserve(videos.AssetThumbnail)
	if err != nil {
		return "", a.fail(err)
	}
	a.thumbSlot = slots[0]
	if err = a.adoptPoster(ctx); err != nil {
		return "", a.fail(err)
	}
	a.advance(StageThumbnailed)

	if url, err = u.storage.Commit(ctx, a.thumbSlot); err != nil {
		return "", a.fail(media.Fail(media.KindIO, err, "commit thumbnail"))
	}
	a.advance(StagePublished)
	a.releaseStaged()
	return url, nil
}

func recordOutcome(err error) {
	code := media.CodeUploadFailed
	if e, ok := media.AsError(err); ok {
		code = e.Code
	}
	outcome := "failed"
	if media.IsValidation(err) {
		outcome = "rejected"
	}
	metrics.Uploads.WithLabelValues(outcome, string(code)).Inc()
}
