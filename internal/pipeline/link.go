package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/thywilljoshua/pdf-corpus/internal/linker"
)

// LinkCounter reports the links already stored, by type.
type LinkCounter interface {
	LinkCounts(ctx context.Context) (map[string]int, error)
}

type LinkReport struct {
	linker.Result
	Total   int            `json:"total"`
	InStore map[string]int `json:"links_in_database,omitempty"`
}

// Link runs strategies with l. After a real run the stored totals are read
// back from counter when it is not nil.
func Link(ctx context.Context, l *linker.Linker, strategies []linker.LinkType, counter LinkCounter) (LinkReport, error) {
	res, err := l.Run(ctx, strategies)
	rep := LinkReport{Result: res, Total: res.Total()}
	if err != nil {
		return rep, err
	}
	if l.DryRun || counter == nil {
		return rep, nil
	}
	counts, err := counter.LinkCounts(ctx)
	if err != nil {
		l.Log.Warn("count stored links", zap.Error(err))
		return rep, nil
	}
	rep.InStore = counts
	return rep, nil
}
