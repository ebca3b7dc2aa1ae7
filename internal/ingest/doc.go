// Package ingest turns uploaded transaction exports into tabular form.
//
// CSV input comes in two conventions: German bank exports use `;` as the
// field separator with `,` as the decimal mark, everything else uses the
// `,`/`.` pair. The dialect is sniffed from a bounded prefix of the raw
// bytes before the full parse. XLSX workbooks are read through their
// first sheet. Every ingested table carries the Category/Subcategory
// tag columns.
package ingest
