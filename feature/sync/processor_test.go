package sync

import (
	"context"
	"errors"
	"testing"

	"catalog-sync/feature/sync/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestProcessor wires a processor from scripted fakes.
func newTestProcessor(host *fakeImageHost, settings *fakeSettings, catalog *fakeCatalog, requireImages bool) *Processor {
	log := zap.NewNop()
	return NewProcessor(
		NewImagePipeline(host, nil, "", 2, log),
		NewSettingsSynchronizer(settings, "https://content.example", log),
		NewCatalogPublisher(catalog, log),
		NewComboEngine(catalog, log),
		requireImages,
		log,
	)
}

func processorProduct() models.Product {
	p := testProduct("AT001")
	p.PriceQuote = []models.Message{{Text: "250k"}}
	p.Combos = []models.ComboSpec{{Name: "combo 2 ao", Price: 400000, Quantity: 2}}
	return p
}

func TestProcess_NewProductFullChain(t *testing.T) {
	catalog := &fakeCatalog{}
	p := newTestProcessor(&fakeImageHost{}, &fakeSettings{page: settingsPage()}, catalog, false)

	out := p.Process(context.Background(), Change{Product: processorProduct(), Kind: ChangeNew}, NewAssetCache())

	assert.True(t, out.Completed)
	assert.Equal(t, StateComplete, out.State)
	assert.Empty(t, out.SoftFailures)
	assert.NoError(t, out.Err)
	assert.Len(t, catalog.created, 1)
	assert.Len(t, catalog.combos, 1)
}

func TestProcess_PublishFailureIsHard(t *testing.T) {
	catalog := &fakeCatalog{
		createFunc: func(ctx context.Context, payload ProductPayload) (string, error) {
			return "", errors.New("api down")
		},
	}
	p := newTestProcessor(&fakeImageHost{}, &fakeSettings{page: settingsPage()}, catalog, false)

	out := p.Process(context.Background(), Change{Product: processorProduct(), Kind: ChangeNew}, NewAssetCache())

	assert.False(t, out.Completed)
	assert.Equal(t, StateFailed, out.State)
	require.Error(t, out.Err)
	// Nothing past publish runs.
	assert.Empty(t, catalog.searches)
	assert.Empty(t, catalog.combos)
}

func TestProcess_SoftFailuresDoNotStopTheChain(t *testing.T) {
	host := &fakeImageHost{
		downloadFunc: func(ctx context.Context, imageID string) (string, error) {
			return "", errors.New("drive permission denied")
		},
	}
	settings := &fakeSettings{getErr: errors.New("network down")}
	catalog := &fakeCatalog{}
	p := newTestProcessor(host, settings, catalog, false)

	out := p.Process(context.Background(), Change{Product: processorProduct(), Kind: ChangeNew}, NewAssetCache())

	assert.True(t, out.Completed)
	assert.Equal(t, StateComplete, out.State)
	assert.Len(t, out.SoftFailures, 2)
	assert.Len(t, catalog.created, 1)
}

func TestProcess_RequireImagesPromotesToHard(t *testing.T) {
	host := &fakeImageHost{
		downloadFunc: func(ctx context.Context, imageID string) (string, error) {
			return "", errors.New("drive permission denied")
		},
	}
	catalog := &fakeCatalog{}
	p := newTestProcessor(host, &fakeSettings{page: settingsPage()}, catalog, true)

	out := p.Process(context.Background(), Change{Product: processorProduct(), Kind: ChangeNew}, NewAssetCache())

	assert.False(t, out.Completed)
	assert.Equal(t, StateFailed, out.State)
	assert.Empty(t, catalog.created)
}

func TestProcess_VerificationMissSkipsCombos(t *testing.T) {
	catalog := &fakeCatalog{
		searchFunc: func(ctx context.Context, code string) (SearchResult, error) {
			return SearchResult{}, nil
		},
	}
	p := newTestProcessor(&fakeImageHost{}, &fakeSettings{page: settingsPage()}, catalog, false)

	out := p.Process(context.Background(), Change{Product: processorProduct(), Kind: ChangeNew}, NewAssetCache())

	// A new product without a verified remote id cannot take combos.
	assert.False(t, out.Completed)
	require.Error(t, out.Err)
	assert.Contains(t, out.Err.Error(), "not verified")
	assert.NotEmpty(t, out.SoftFailures)
	assert.Empty(t, catalog.combos)
}

func TestProcess_ContentChangeSkipsCombos(t *testing.T) {
	catalog := &fakeCatalog{}
	p := newTestProcessor(&fakeImageHost{}, &fakeSettings{page: settingsPage()}, catalog, false)

	out := p.Process(context.Background(), Change{Product: processorProduct(), Kind: ChangeContent}, NewAssetCache())

	assert.True(t, out.Completed)
	assert.Equal(t, StateComplete, out.State)
	// Content edits must not duplicate existing bundles.
	assert.Empty(t, catalog.combos)
}

func TestProcess_ComboFailureBlocksCompletion(t *testing.T) {
	catalog := &fakeCatalog{
		createComboFunc: func(ctx context.Context, payload ComboPayload) (string, error) {
			return "", errors.New("api rejected")
		},
	}
	p := newTestProcessor(&fakeImageHost{}, &fakeSettings{page: settingsPage()}, catalog, false)

	out := p.Process(context.Background(), Change{Product: processorProduct(), Kind: ChangeRenamed, PreviousCode: "AT000"}, NewAssetCache())

	assert.False(t, out.Completed)
	require.Error(t, out.Err)
	assert.Equal(t, StateVerified, out.State)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "complete", StateComplete.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(99).String())
}
