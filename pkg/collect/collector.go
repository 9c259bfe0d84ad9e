package collect

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/coolbeans/caselink/pkg/infobox"
	"github.com/coolbeans/caselink/pkg/wikiapi"
	"github.com/coolbeans/caselink/pkg/wikitext"
)

// PageSource is the slice of the Wikimedia client the collector depends on.
// *wikiapi.Client satisfies it; tests supply fakes.
type PageSource interface {
	// ListEmbedded returns titles of pages embedding the given template.
	ListEmbedded(ctx context.Context, template string) ([]string, error)

	// WikitextBatch returns raw wikitext per title for up to 50 titles.
	WikitextBatch(ctx context.Context, titles []string) (map[string]string, error)

	// Pageviews returns monthly pageview aggregates for one article.
	Pageviews(ctx context.Context, title string) (wikiapi.ViewCounts, error)
}

// Progress receives coarse pipeline progress callbacks. Any field may be nil.
type Progress struct {
	// OnPages is called once with the number of pages discovered.
	OnPages func(total int)

	// OnBatch is called after each wikitext batch completes.
	OnBatch func(done, total int)

	// OnPageviews is called after each pageview fetch completes.
	OnPageviews func(done, total int)
}

// Collector runs the collection pipeline against a page source.
type Collector struct {
	source    PageSource
	extractor *infobox.Extractor
	config    Config
	progress  Progress
}

// NewCollector creates a Collector with the given source and configuration.
func NewCollector(source PageSource, config Config) *Collector {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}
	if config.WikitextWorkers <= 0 {
		config.WikitextWorkers = DefaultWikitextWorkers
	}
	if config.PageviewWorkers <= 0 {
		config.PageviewWorkers = DefaultPageviewWorkers
	}
	if config.Template == "" {
		config.Template = DefaultTemplate
	}

	return &Collector{
		source:    source,
		extractor: infobox.NewExtractor(),
		config:    config,
	}
}

// SetProgress installs progress callbacks.
func (collector *Collector) SetProgress(progress Progress) {
	collector.progress = progress
}

// Run executes the pipeline: list embedding pages, fetch wikitext in
// batches, extract identifiers, then attach pageview counts. Extraction is
// pure and fans out across workers with no ordering requirement; records
// are sorted by title before returning.
func (collector *Collector) Run(ctx context.Context) ([]infobox.CaseRecord, *Report, error) {
	titles, err := collector.source.ListEmbedded(ctx, collector.config.Template)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list template pages: %w", err)
	}
	if collector.progress.OnPages != nil {
		collector.progress.OnPages(len(titles))
	}

	records, err := collector.collectRecords(ctx, titles)
	if err != nil {
		return nil, nil, err
	}

	if !collector.config.SkipPageviews {
		if err := collector.attachPageviews(ctx, records); err != nil {
			return nil, nil, err
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Title < records[j].Title
	})

	return records, NewReport(records), nil
}

// collectRecords fetches wikitext batches concurrently and extracts one
// case record per title.
func (collector *Collector) collectRecords(ctx context.Context, titles []string) ([]infobox.CaseRecord, error) {
	batches := splitBatches(titles, collector.config.BatchSize)

	type batchResult struct {
		records []infobox.CaseRecord
		err     error
	}

	batchChan := make(chan []string)
	resultChan := make(chan batchResult)

	var workerGroup sync.WaitGroup
	for workerIndex := 0; workerIndex < collector.config.WikitextWorkers; workerIndex++ {
		workerGroup.Add(1)
		go func() {
			defer workerGroup.Done()
			for batch := range batchChan {
				records, err := collector.processBatch(ctx, batch)
				resultChan <- batchResult{records: records, err: err}
			}
		}()
	}

	go func() {
		for _, batch := range batches {
			batchChan <- batch
		}
		close(batchChan)
		workerGroup.Wait()
		close(resultChan)
	}()

	var records []infobox.CaseRecord
	var firstErr error
	completed := 0
	for result := range resultChan {
		completed++
		if collector.progress.OnBatch != nil {
			collector.progress.OnBatch(completed, len(batches))
		}
		if result.err != nil {
			if firstErr == nil {
				firstErr = result.err
			}
			continue
		}
		records = append(records, result.records...)
	}
	if firstErr != nil {
		return nil, firstErr
	}

	return records, nil
}

// processBatch fetches one batch of wikitext and extracts identifiers.
// Pages without a recognizable infobox still yield a record with empty
// identifier fields.
func (collector *Collector) processBatch(ctx context.Context, titles []string) ([]infobox.CaseRecord, error) {
	wikitextByTitle, err := collector.source.WikitextBatch(ctx, titles)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wikitext batch: %w", err)
	}

	records := make([]infobox.CaseRecord, 0, len(titles))
	for _, title := range titles {
		var usCite, docket string
		if span, found := wikitext.FindTemplate(wikitextByTitle[title]); found {
			usCite, docket = collector.extractor.Extract(wikitext.Clean(span.Text))
		}
		records = append(records, infobox.CaseRecord{
			Title:  title,
			USCite: usCite,
			Docket: docket,
		})
	}
	return records, nil
}

// attachPageviews fills in view counts concurrently. A failed pageview
// lookup degrades to zero counts; it never aborts the run.
func (collector *Collector) attachPageviews(ctx context.Context, records []infobox.CaseRecord) error {
	indexChan := make(chan int)
	var workerGroup sync.WaitGroup
	var progressMu sync.Mutex
	completed := 0

	for workerIndex := 0; workerIndex < collector.config.PageviewWorkers; workerIndex++ {
		workerGroup.Add(1)
		go func() {
			defer workerGroup.Done()
			for recordIndex := range indexChan {
				counts, err := collector.source.Pageviews(ctx, records[recordIndex].Title)
				if err == nil {
					records[recordIndex].Views = infobox.PageviewCounts{
						AllTime: counts.AllTime,
						Last12:  counts.Last12,
						Last6:   counts.Last6,
						Last1:   counts.Last1,
					}
				}
				if collector.progress.OnPageviews != nil {
					progressMu.Lock()
					completed++
					collector.progress.OnPageviews(completed, len(records))
					progressMu.Unlock()
				}
			}
		}()
	}

	for recordIndex := range records {
		select {
		case <-ctx.Done():
			close(indexChan)
			workerGroup.Wait()
			return ctx.Err()
		case indexChan <- recordIndex:
		}
	}
	close(indexChan)
	workerGroup.Wait()
	return nil
}

// splitBatches divides titles into slices of at most size elements.
func splitBatches(titles []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(titles); start += size {
		end := start + size
		if end > len(titles) {
			end = len(titles)
		}
		batches = append(batches, titles[start:end])
	}
	return batches
}
