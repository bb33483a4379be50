package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// This is useful when the server shares one Redis instance across
// deployments and each needs a separate cache namespace.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// AssetKey generates a prefixed key for a provisioned model asset.
func (k *ScopedKeyer) AssetKey(name, url string) string {
	return k.prefix + k.inner.AssetKey(name, url)
}

// DocumentKey generates a prefixed key for an extracted document.
func (k *ScopedKeyer) DocumentKey(inputHash string, opts DocumentKeyOpts) string {
	return k.prefix + k.inner.DocumentKey(inputHash, opts)
}

// AnalysisKey generates a prefixed key for an analyzed document.
func (k *ScopedKeyer) AnalysisKey(docHash string, opts AnalysisKeyOpts) string {
	return k.prefix + k.inner.AnalysisKey(docHash, opts)
}

// ArtifactKey generates a prefixed key for a rendered artifact.
func (k *ScopedKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(docHash, opts)
}
