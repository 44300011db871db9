package badger

// Key prefixes for different data types
const (
	indexEntryPrefix = "idxent:"
	checkpointPrefix = "chkpt:"
)

// makeIndexEntryKey generates the key of an index entry by doc id.
func makeIndexEntryKey(docID string) []byte {
	return []byte(indexEntryPrefix + docID)
}

// docIDFromKey strips the index entry prefix from a key.
func docIDFromKey(key []byte) string {
	return string(key[len(indexEntryPrefix):])
}

// makeCheckpointKey generates the key of a stage checkpoint.
func makeCheckpointKey(stage string) []byte {
	return []byte(checkpointPrefix + stage)
}
