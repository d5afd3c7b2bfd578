package badger

import (
	"encoding/binary"
	"strings"
)

// Key prefixes for different data types
const (
	questionPrefix     = "qrec:"
	synonymGroupPrefix = "syng:"
	corpusMetaKey      = "meta:corpus"
)

// makeQuestionKey generates a key for a question by ID. IDs are lowercased
// so lookups ignore case.
func makeQuestionKey(id string) []byte {
	return []byte(questionPrefix + strings.ToLower(id))
}

// questionIDFromKey recovers the lowercased ID from a question key.
func questionIDFromKey(key []byte) string {
	return string(key[len(questionPrefix):])
}

// makeSynonymGroupKey generates a key for the group at position index of the
// dictionary.
// Format: prefix:index
func makeSynonymGroupKey(index int) []byte {
	prefixBytes := []byte(synonymGroupPrefix)
	buf := make([]byte, len(prefixBytes)+4)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint32(buf[offset:], uint32(index))
	return buf
}

// makeCorpusMetaKey generates the key of the corpus metadata record.
func makeCorpusMetaKey() []byte {
	return []byte(corpusMetaKey)
}
