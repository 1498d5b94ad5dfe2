package sync

import (
	"testing"

	"catalog-sync/feature/sync/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClassify_FirstRunAllNew(t *testing.T) {
	d := NewDetector(zap.NewNop())
	products := []models.Product{testProduct("AT001"), testProduct("AT002"), testProduct("AT003")}
	for i := range products {
		products[i].POSName = products[i].Code // distinct fingerprints
	}

	det := d.Classify(products, map[string]string{})

	require.Len(t, det.ToProcess, 3)
	assert.Equal(t, 0, det.Unchanged)
	for _, c := range det.ToProcess {
		assert.Equal(t, ChangeNew, c.Kind)
		assert.True(t, c.NeedsCombo())
	}
	assert.Len(t, det.Next, 3)
}

func TestClassify_SecondRunNoWork(t *testing.T) {
	d := NewDetector(zap.NewNop())
	products := []models.Product{testProduct("AT001"), testProduct("AT002")}
	products[1].POSName = "Other"

	first := d.Classify(products, map[string]string{})
	second := d.Classify(products, first.Next)

	assert.Empty(t, second.ToProcess)
	assert.Equal(t, 2, second.Unchanged)
	assert.Equal(t, first.Next, second.Next)
}

func TestClassify_ContentChange(t *testing.T) {
	d := NewDetector(zap.NewNop())
	original := testProduct("AT001")
	prev := map[string]string{"AT001": Fingerprint(original)}

	changed := testProduct("AT001")
	changed.Price = 999000

	det := d.Classify([]models.Product{changed}, prev)

	require.Len(t, det.ToProcess, 1)
	assert.Equal(t, ChangeContent, det.ToProcess[0].Kind)
	assert.False(t, det.ToProcess[0].NeedsCombo())
}

func TestClassify_Rename(t *testing.T) {
	d := NewDetector(zap.NewNop())
	original := testProduct("AT001")
	prev := map[string]string{"AT001": Fingerprint(original)}

	renamed := testProduct("AT001V2")

	det := d.Classify([]models.Product{renamed}, prev)

	require.Len(t, det.ToProcess, 1)
	assert.Equal(t, ChangeRenamed, det.ToProcess[0].Kind)
	assert.Equal(t, "AT001", det.ToProcess[0].PreviousCode)
	assert.True(t, det.ToProcess[0].NeedsCombo())
}

func TestClassify_NoRenameWhenOldCodeStillPresent(t *testing.T) {
	d := NewDetector(zap.NewNop())
	original := testProduct("AT001")
	prev := map[string]string{"AT001": Fingerprint(original)}

	// A second product with identical content appears while the first is
	// still in the feed. That is a new product, not a rename.
	det := d.Classify([]models.Product{testProduct("AT001"), testProduct("AT002")}, prev)

	require.Len(t, det.ToProcess, 1)
	assert.Equal(t, "AT002", det.ToProcess[0].Product.Code)
	assert.Equal(t, ChangeNew, det.ToProcess[0].Kind)
	assert.Equal(t, 1, det.Unchanged)
}

func TestClassify_AmbiguousRenameIsDeterministic(t *testing.T) {
	d := NewDetector(zap.NewNop())
	fp := Fingerprint(testProduct("whatever"))
	prev := map[string]string{"AT002": fp, "AT001": fp}

	det := d.Classify([]models.Product{testProduct("AT009")}, prev)

	require.Len(t, det.ToProcess, 1)
	assert.Equal(t, ChangeRenamed, det.ToProcess[0].Kind)
	assert.Equal(t, "AT001", det.ToProcess[0].PreviousCode)
}

func TestClassify_SkipsEmptyCodes(t *testing.T) {
	d := NewDetector(zap.NewNop())
	blank := testProduct("")

	det := d.Classify([]models.Product{blank, testProduct("AT001")}, map[string]string{})

	require.Len(t, det.ToProcess, 1)
	assert.Equal(t, "AT001", det.ToProcess[0].Product.Code)
	assert.NotContains(t, det.Next, "")
}
