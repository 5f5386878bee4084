package store

import (
	"context"
	"fmt"

	"github.com/roach88/menukit/internal/menu"
)

var _ menu.Tracer = (*Store)(nil)

// Record appends one dispatch to the log. It implements menu.Tracer, so a
// Store can be handed to menu.WithTracer directly.
func (s *Store) Record(ctx context.Context, rec menu.Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dispatches
		(token, seq, menu, element, response, target, blob_before, blob_after, deferred, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.Token,
		rec.Seq,
		rec.Menu,
		rec.Element,
		rec.Response,
		rec.Target,
		rec.BlobBefore,
		rec.BlobAfter,
		rec.Deferred,
		rec.Error,
	)
	if err != nil {
		return fmt.Errorf("write dispatch: %w", err)
	}
	return nil
}
