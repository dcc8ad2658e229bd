package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/thywilljoshua/pdf-corpus/internal/extract"
	"github.com/thywilljoshua/pdf-corpus/internal/objstore"
)

// ImageStore records uploaded image metadata.
type ImageStore interface {
	ImageExistsByHash(ctx context.Context, hash string) (bool, error)
	InsertImage(ctx context.Context, documentID, storagePath string, img extract.ExtractedImage) (string, error)
}

// HashCache is an optional fast path in front of ImageExistsByHash.
type HashCache interface {
	Seen(ctx context.Context, hash string) (bool, error)
	Add(ctx context.Context, hash string) error
}

// ExtractReport tallies the extraction of one or more documents.
type ExtractReport struct {
	extract.Stats
	Uploaded     int `json:"uploaded"`
	UploadErrors int `json:"upload_errors"`
	InsertErrors int `json:"insert_errors"`
	// Planned lists the storage paths a dry run would have written.
	Planned []string `json:"planned,omitempty"`
}

func (r *ExtractReport) Add(o ExtractReport) {
	r.Stats.Add(o.Stats)
	r.Uploaded += o.Uploaded
	r.UploadErrors += o.UploadErrors
	r.InsertErrors += o.InsertErrors
	r.Planned = append(r.Planned, o.Planned...)
}

// Extraction pulls images out of documents and uploads the new ones.
type Extraction struct {
	Extractor *extract.Extractor
	Images    ImageStore
	Objects   objstore.Store
	Cache     HashCache // optional
	DryRun    bool
	// RenderPages are 0-based page indices rasterized whole.
	RenderPages []int
	Log         *zap.Logger
}

// Document extracts the images of one target. Only a cancelled context
// stops it early; per-image failures are counted.
func (x *Extraction) Document(ctx context.Context, t Target) (ExtractReport, error) {
	log := x.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("document_id", t.Document.ID))

	var rep ExtractReport
	seen := extract.NewDeduper(&rep.Stats)
	emit := func(img extract.ExtractedImage) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		x.store(ctx, log, t, img, &rep)
		return nil
	}

	ex := *x.Extractor
	ex.Log = log
	ex.Renderer = t.Source.Renderer
	if err := ex.Embedded(t.Source.Doc, seen, &rep.Stats, emit); err != nil {
		return rep, err
	}
	if len(x.RenderPages) > 0 {
		err := ex.RenderPages(ctx, t.Source.Doc, x.RenderPages, seen, &rep.Stats, emit)
		if ctx.Err() != nil {
			return rep, ctx.Err()
		}
		if err != nil {
			log.Warn("render pages", zap.Error(err))
		}
	}
	log.Info("extracted", zap.Int("images", rep.TotalExtracted), zap.Int("uploaded", rep.Uploaded))
	return rep, nil
}

func (x *Extraction) store(ctx context.Context, log *zap.Logger, t Target, img extract.ExtractedImage, rep *ExtractReport) {
	path := extract.StoragePath(t.Slug, img)
	log = log.With(zap.String("path", path))
	if x.DryRun {
		log.Info("dry run", zap.Int("width", img.Width), zap.Int("height", img.Height),
			zap.Int("bytes", img.ByteSize), zap.String("category", string(img.Category)))
		rep.Planned = append(rep.Planned, path)
		return
	}

	known, err := x.known(ctx, log, img.ContentHash)
	if err != nil {
		log.Error("lookup content hash", zap.Error(err))
		rep.InsertErrors++
		return
	}
	if known {
		rep.Deduplicated++
		return
	}

	err = x.Objects.Put(ctx, path, img.Data, img.Format.ContentType())
	if err != nil && !errors.Is(err, objstore.ErrExists) {
		log.Error("upload", zap.Error(err))
		rep.UploadErrors++
		return
	}
	if _, err := x.Images.InsertImage(ctx, t.Document.ID, path, img); err != nil {
		log.Error("insert image", zap.Error(err))
		rep.InsertErrors++
		return
	}
	rep.Uploaded++
	x.remember(ctx, log, img.ContentHash)
}

// known reports whether an image with hash was stored by an earlier run.
// Cache failures fall through to the database.
func (x *Extraction) known(ctx context.Context, log *zap.Logger, hash string) (bool, error) {
	if x.Cache != nil {
		seen, err := x.Cache.Seen(ctx, hash)
		if err != nil {
			log.Warn("hash cache lookup", zap.Error(err))
		} else if seen {
			return true, nil
		}
	}
	exists, err := x.Images.ImageExistsByHash(ctx, hash)
	if err != nil {
		return false, fmt.Errorf("image by hash: %w", err)
	}
	if exists {
		x.remember(ctx, log, hash)
	}
	return exists, nil
}

func (x *Extraction) remember(ctx context.Context, log *zap.Logger, hash string) {
	if x.Cache == nil {
		return
	}
	if err := x.Cache.Add(ctx, hash); err != nil {
		log.Warn("cache content hash", zap.Error(err))
	}
}
