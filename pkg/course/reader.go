package course

import (
	"context"
	"errors"
	"strings"

	"github.com/entrhq/autostudy/pkg/logging"
	"github.com/entrhq/autostudy/pkg/page"
)

// Reader extracts lesson state from a page. It never fails: lookup misses
// and adapter errors are logged and replaced with sentinel values.
type Reader struct {
	adapter page.Adapter
	logger  *logging.Logger
	markers []string
}

// NewReader creates a reader. markers are removed from lesson titles;
// nil means the default elective marker.
func NewReader(adapter page.Adapter, logger *logging.Logger, markers []string) *Reader {
	if logger == nil {
		logger = logging.Discard()
	}
	if markers == nil {
		markers = []string{ElectiveMarker}
	}
	return &Reader{adapter: adapter, logger: logger, markers: markers}
}

// Read performs one full pass over the page.
func (r *Reader) Read(ctx context.Context) Observation {
	return Observation{
		Course: r.CurrentCourse(ctx),
		Time:   r.StudyTime(ctx),
		Index:  r.IndexInfo(ctx),
	}
}

// StudyTime returns the elapsed and required clock text.
func (r *Reader) StudyTime(ctx context.Context) StudyTimeInfo {
	info := unknownTime()

	studied, okStudied := r.field(ctx, page.FieldStudied)
	if okStudied {
		info.Studied = studied
	}
	total, okTotal := r.field(ctx, page.FieldTotal)
	if okTotal {
		info.Total = total
	}

	info.Valid = okStudied && okTotal
	return info
}

// CurrentCourse returns the active lesson title without markers.
func (r *Reader) CurrentCourse(ctx context.Context) string {
	title, ok := r.field(ctx, page.FieldActiveTitle)
	if !ok {
		return UnknownCourse
	}
	for _, marker := range r.markers {
		title = strings.ReplaceAll(title, marker, "")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return UnknownCourse
	}
	return title
}

// IndexInfo locates the active lesson.
func (r *Reader) IndexInfo(ctx context.Context) IndexInfo {
	entries, err := r.adapter.ListEntries(ctx)
	if err != nil {
		r.logger.Warnf("failed to list lesson entries: %v", err)
		return unknownIndex()
	}
	if len(entries) == 0 {
		r.logger.Debugf("no lesson entries on page")
		return unknownIndex()
	}

	for i, entry := range entries {
		if entry.Active {
			return IndexInfo{
				Current: i,
				Total:   len(entries),
				IsLast:  i == len(entries)-1,
			}
		}
	}

	r.logger.Debugf("no active lesson among %d entries", len(entries))
	return unknownIndex()
}

func (r *Reader) field(ctx context.Context, field page.Field) (string, bool) {
	value, err := r.adapter.ReadField(ctx, field)
	switch {
	case errors.Is(err, page.ErrNotFound):
		r.logger.Debugf("field %s not on page", field)
		return "", false
	case err != nil:
		r.logger.Warnf("failed to read field %s: %v", field, err)
		return "", false
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}
