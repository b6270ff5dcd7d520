package port

import (
	"context"

	"terroir/internal/dossier"
)

// IntegrityChecker runs after a successful commit. A failure is reported but
// does not undo the commit.
type IntegrityChecker interface {
	Check(ctx context.Context, targets dossier.Targets) error
}
