// Package source loads timeline datasets from files and URLs.
//
// A [Source] yields raw CSV bytes. [ParseCSV] turns them into records and
// [Loader] runs the whole chain (fetch, parse, normalize, pack) into a
// [Dataset]:
//
//	src, err := source.Open("timeline-data.csv")
//	if err != nil {
//	    return err
//	}
//	loader := source.NewLoader(src, source.WithLoaderLogger(logger))
//	ds := loader.Load(ctx)
//	if ds.Err != nil {
//	    // render the error placeholder
//	}
//
// # Failures
//
// A failed fetch is logged and produces an empty dataset with Err set; it is
// never returned as an error, so viewers always have something to draw.
//
// # Reloads
//
// Overlapping calls to [Loader.Load] share one fetch. Every load gets a
// generation number and the loader only ever replaces its current dataset
// with a newer generation. [Loader.Watch] reloads file sources when they
// change on disk.
package source
