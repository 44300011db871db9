// Package reembed re-embeds every entry of the vector store with the
// configured embedder, for example after switching embedding models.
//
// Entries are processed in batches with retry and progress reporting. Doc
// ids, text and metadata are kept; only vectors are replaced, normalized to
// unit length for cosine similarity search.
package reembed
