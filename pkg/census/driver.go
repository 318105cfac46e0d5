package census

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/sandrockwiki/census/pkg/assetrepo"
	"github.com/sandrockwiki/census/pkg/generator"
	"github.com/sandrockwiki/census/pkg/itemsource"
	"github.com/sandrockwiki/census/pkg/mission"
	"github.com/sandrockwiki/census/pkg/preproc"
	"github.com/sandrockwiki/census/pkg/registry"
	"github.com/sandrockwiki/census/pkg/sceneinfo"
	"github.com/sandrockwiki/census/pkg/text"
)

// knownTableNames lists every designer-config table the registry may be
// asked to load across the whole pipeline. A table absent from a given
// data set simply never has a matching file; callers treat
// censuserr.ErrUnknownTable and a read failure differently (see
// pkg/itemsource's extractors), so the list here governs what the
// registry will even attempt.
var knownTableNames = []string{
	"item", "recipe", "monster", "terrainTree", "crop", "fishingSpot", "container",
	"store", "ruins", "delivery", "developerMail", "eventGift", "guildReward",
	"marriageMail", "photoTask", "museumReward", "partyService", "petDispatch",
	"research", "sandRacing", "sandSledding", "spouseCooking", "spouseGift",
	"biographyPhoto", "civilCorps", "machineUpgrade", "machine", "recipeBook",
	"researchDisc", "cookingExperiment", "recipeScript", "npcRecipeShare",
	"generator", "generatorGroup", "mailTemplate",
}

// Driver owns a loaded Config and orchestrates the full pipeline: registry
// load, scene-info indexing, scene preprocessing (cached), mission script
// parsing, and item-source resolution, finishing with the output
// formatter.
type Driver struct {
	cfg    *Config
	logger *logrus.Entry
}

// NewDriver prepares a Driver over an already-validated Config.
func NewDriver(cfg *Config) *Driver {
	return &Driver{cfg: cfg}
}

// WithLogger attaches a logger used for per-stage progress, matching the
// staged-pipeline logging style the rest of this module follows.
func (d *Driver) WithLogger(logger *logrus.Entry) *Driver {
	d.logger = logger
	return d
}

func (d *Driver) logInfo(format string, args ...any) {
	if d.logger != nil {
		d.logger.Infof(format, args...)
	}
}

// Run executes the full pipeline and returns the resolved item-source
// Result plus the registry and wiki namer needed by the output formatter.
// Errors surface synchronously: on any fatal stage error, Run aborts
// before producing partial output.
func (d *Driver) Run(ctx context.Context) (*itemsource.Result, *registry.Registry, *text.WikiNamer, error) {
	if err := ctxDone(ctx); err != nil {
		return nil, nil, nil, err
	}

	designerConfigRoot := filepath.Join(d.cfg.AssetsRoot, "designer_config")
	reg := registry.NewRegistry(designerConfigRoot, knownTableNames)
	d.logInfo("census: registry rooted at %s with %d known tables", designerConfigRoot, len(knownTableNames))

	if err := ctxDone(ctx); err != nil {
		return nil, nil, nil, err
	}

	sceneInfoDir := filepath.Join(d.cfg.AssetsRoot, "sceneinfo")
	sceneBundle, err := assetrepo.OpenBundle(sceneInfoDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening sceneinfo bundle: %w", err)
	}
	scenes, err := sceneinfo.BuildIndex(ctx, sceneBundle)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("building scene index: %w", err)
	}
	d.logInfo("census: scene index built with %d scenes", scenes.Len())

	if err := ctxDone(ctx); err != nil {
		return nil, nil, nil, err
	}

	sceneAdditiveRoot := filepath.Join(d.cfg.AssetsRoot, "scene", "additive")
	cache := preproc.NewCache(d.cfg.CacheRoot)
	versionTag := fmt.Sprintf("%x", d.cfg.Hash())

	var points []preproc.InterestPoint
	if cached, ok := cache.Get(sceneAdditiveRoot, versionTag); ok {
		d.logInfo("census: preprocessor cache hit for %s", sceneAdditiveRoot)
		points = cached
	} else {
		scanner := preproc.NewScanner(sceneAdditiveRoot, scenes)
		if d.logger != nil {
			scanner = scanner.WithLogger(d.logger)
		}
		points, err = scanner.Scan(ctx)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("scanning scenes: %w", err)
		}
		if err := cache.Put(sceneAdditiveRoot, versionTag, points); err != nil {
			d.logInfo("census: failed to write preprocessor cache: %v", err)
		}
	}
	d.logInfo("census: %d scene interest points", len(points))

	if err := ctxDone(ctx); err != nil {
		return nil, nil, nil, err
	}

	missions, err := loadMissions(filepath.Join(d.cfg.AssetsRoot, "story_script"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading mission scripts: %w", err)
	}
	d.logInfo("census: %d mission scripts loaded", len(missions))

	genTable := loadGeneratorTable(reg)

	resolver := itemsource.NewResolver()
	if d.cfg.KnownBadDropsPath != "" {
		badDrops, err := loadKnownBadDrops(d.cfg.KnownBadDropsPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("loading known bad drops: %w", err)
		}
		resolver.KnownBadDrops = badDrops
	}
	if d.logger != nil {
		resolver = resolver.WithLogger(d.logger)
	}

	result, err := resolver.Run(ctx, reg, genTable, points, missions)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolving item sources: %w", err)
	}
	d.logInfo("census: resolved %d items with at least one source", len(result.Provenance))

	namer, err := d.buildWikiNamer(reg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("building wiki namer: %w", err)
	}

	return result, reg, namer, nil
}

func ctxDone(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// buildWikiNamer loads the item table and the configured languages'
// localized text, and wraps them in a text.WikiNamer that resolves each
// item's nameId against the wiki language for display-name lookups.
func (d *Driver) buildWikiNamer(reg *registry.Registry) (*text.WikiNamer, error) {
	itemTable, err := reg.Table("item")
	if err != nil {
		return nil, err
	}
	items := registry.Items(itemTable)

	textTable, err := loadTextTable(d.cfg.AssetsRoot, d.cfg.Languages, d.cfg.LanguageCodes)
	if err != nil {
		return nil, fmt.Errorf("loading localized text: %w", err)
	}
	wikiCode := languageCode(d.cfg.Languages, d.cfg.LanguageCodes, d.cfg.WikiLanguage)

	namer := text.NewWikiNamer(func(itemID int) (string, error) {
		nameID, ok := items.NameID(itemID)
		if !ok {
			return "", fmt.Errorf("item %d has no nameId", itemID)
		}
		return textTable.Text(nameID, wikiCode)
	}, items, nil, nil)
	if d.logger != nil {
		namer = namer.WithLogger(d.logger)
	}
	return namer, nil
}
