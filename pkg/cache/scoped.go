package cache

// scopedKeyer prefixes every key of an inner keyer.
type scopedKeyer struct {
	inner Keyer
	scope string
}

// NewScopedKeyer returns a keyer whose keys all start with scope, so that
// entries of different datasets, tenants or builds never collide. A nil
// inner keyer means the default one.
func NewScopedKeyer(inner Keyer, scope string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return scopedKeyer{inner: inner, scope: scope}
}

// NewVersionedKeyer scopes keys to a build version. Rendered scenes depend
// on the renderer, so a new build must not reuse an old build's renders.
func NewVersionedKeyer(version string) Keyer {
	return NewScopedKeyer(nil, "v"+version+":")
}

func (k scopedKeyer) ChildrenKey(source, parent string) string {
	return k.scope + k.inner.ChildrenKey(source, parent)
}

func (k scopedKeyer) SceneKey(datasetHash string, opts SceneKeyOpts) string {
	return k.scope + k.inner.SceneKey(datasetHash, opts)
}
