package pipeline

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/thywilljoshua/pdf-corpus/internal/store"
)

// Target is one resolved PDF.
type Target struct {
	Path     string
	Document store.Document
	Slug     string
	Source   Source
}

// Runner walks PDF files, resolves each to a document and opens it.
type Runner struct {
	Documents []store.Document
	Open      OpenFunc
	Log       *zap.Logger
}

// RunReport counts the files a Runner handled.
type RunReport struct {
	Files      int      `json:"files"`
	Processed  int      `json:"processed"`
	Unresolved []string `json:"unresolved,omitempty"`
	Failed     []string `json:"failed,omitempty"`
}

// Each calls fn for every file that resolves and opens. Unresolved or
// unreadable files are reported and skipped. An error from fn stops the run.
func (r *Runner) Each(ctx context.Context, files []string, fn func(context.Context, Target) error) (RunReport, error) {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	open := r.Open
	if open == nil {
		open = OpenFile
	}
	rep := RunReport{Files: len(files)}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		name := filepath.Base(path)
		doc, ok := Resolve(r.Documents, name)
		if !ok {
			log.Warn("no matching source document", zap.String("path", path))
			rep.Unresolved = append(rep.Unresolved, name)
			continue
		}
		src, err := open(path)
		if err != nil {
			log.Error("open pdf", zap.String("path", path), zap.Error(err))
			rep.Failed = append(rep.Failed, name)
			continue
		}
		t := Target{Path: path, Document: doc, Slug: DocSlug(doc.Abbreviation, name), Source: src}
		log.Info("processing", zap.String("path", path), zap.String("document_id", doc.ID), zap.Int("pages", src.Doc.NumPages()))
		err = fn(ctx, t)
		if src.Close != nil {
			src.Close()
		}
		if err != nil {
			return rep, err
		}
		rep.Processed++
	}
	return rep, nil
}
