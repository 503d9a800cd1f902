package cache

// ScopedKeyer prefixes every key from an inner Keyer. Viewer processes that
// share one Redis instance use it to keep their namespaces apart.
//
//	keyer := NewScopedKeyer(nil, "chronoline:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// A nil inner keyer means [NewDefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// FetchKey returns the prefixed fetch key.
func (k *ScopedKeyer) FetchKey(url string) string {
	return k.prefix + k.inner.FetchKey(url)
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(datasetHash, opts)
}
