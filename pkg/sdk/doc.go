// Package cymbalsearch provides an in-process Go client for document search
// and ingestion on Vertex AI Search (Discovery Engine) and Cloud Storage.
//
// It wires the same use cases as the HTTP server without going over HTTP:
//
//	client, _ := cymbalsearch.New(ctx,
//	    cymbalsearch.WithProject("my-project", "global"),
//	    cymbalsearch.WithDataStore("docs-ds"),
//	    cymbalsearch.WithApp("docs-app"),
//	    cymbalsearch.WithBucket("my-bucket"),
//	)
//	defer client.Close()
//
//	up, _ := client.UploadPDF(ctx, f, "report.pdf")
//	res, _ := client.Ingest(ctx, up.ObjectName, cymbalsearch.DocumentMetadata{Tenant: "acme"})
//	hits, _ := client.Query("annual revenue").PageSize(5).Citations(false).Do(ctx)
//
// Long imports can be submitted without waiting and polled later:
//
//	op, _ := client.IngestAsync(ctx, "docs/report.pdf", meta)
//	op2, _ := client.Operation(ctx, op.Operation.Name)
package cymbalsearch
