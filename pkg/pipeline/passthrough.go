package pipeline

import "github.com/viewstream/viewstream/internal/utils/path"

// wirePassThrough subscribes b to every segment path upstream declares,
// except those skip accepts, forwarding each event through unchanged and
// untranslated. Every transformation step built in this package uses this
// for the paths it does not itself touch — only GroupBy ever needs a
// translated (rather than identity) forward, and it does that wiring
// itself for the paths under its scope.
func wirePassThrough(upstream Step, b *bus, skip func(path.Path) bool) {
	for _, p := range upstream.TypeDescriptor().Paths() {
		if skip(p) {
			continue
		}
		p := p
		upstream.OnAdded(p, func(kp path.Path, key string, props Item) {
			b.emitAdded(p, kp, key, props)
		})
		upstream.OnRemoved(p, func(kp path.Path, key string, props Item) {
			b.emitRemoved(p, kp, key, props)
		})
		upstream.OnModified(p, func(kp path.Path, parentKey string, name string, v interface{}) {
			b.emitModified(p, kp, parentKey, name, v)
		})
	}
}

// noPaths never skips anything — full pass-through.
func noPaths(path.Path) bool { return false }

// at builds a skip predicate that matches exactly the given path.
func at(target path.Path) func(path.Path) bool {
	return func(p path.Path) bool { return p.Equal(target) }
}

// atOrUnder builds a skip predicate matching target and everything
// strictly beneath it.
func atOrUnder(target path.Path) func(path.Path) bool {
	return func(p path.Path) bool { return target.Contains(p) }
}

// anyOf combines skip predicates with logical OR.
func anyOf(preds ...func(path.Path) bool) func(path.Path) bool {
	return func(p path.Path) bool {
		for _, pred := range preds {
			if pred(p) {
				return true
			}
		}
		return false
	}
}
