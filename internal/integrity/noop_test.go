package integrity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"terroir/internal/dossier"
	"terroir/internal/integrity"
)

func TestNoopChecker(t *testing.T) {
	err := integrity.NewNoopChecker().Check(context.Background(), dossier.Targets{TerritoryID: "t-1", DossierID: "d-1"})
	assert.NoError(t, err)
}
