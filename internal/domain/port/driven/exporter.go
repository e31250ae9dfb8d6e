package driven

import (
	"context"

	"github.com/capeksafety/reviewkit/internal/domain/model"
)

// ChangeExporter is the boundary to the rendering pipeline: the review
// core hands over a change-set together with the comment snapshot of the
// session, and the adapter turns them into CSV rows, email bodies, or
// diagram images. The core is agnostic to the output format.
type ChangeExporter interface {
	Export(ctx context.Context, changes model.ChangeSet, comments []model.Comment) error
}
