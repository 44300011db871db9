// Package ingestion implements the incremental mail pipeline.
//
// A run moves through three stages, each owning one persisted store:
//   - FetchStage lists the mailbox and appends unseen messages to the raw store
//   - ClassifyStage merges the raw store with the previous classified store
//     and labels only rows that were never labelled
//   - IndexStage embeds accepted rows whose doc id is not yet in the vector store
//
// Every stage computes a delta against its own store, so reruns do no
// repeated model work. Stages run strictly in sequence and a stage that fails
// or is cancelled leaves its previous store untouched.
package ingestion
