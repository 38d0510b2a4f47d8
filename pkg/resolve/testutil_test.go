package resolve

import "github.com/binpm/resolver/pkg/universe"

// simpleUniverse builds a one-UID-per-name universe from a flat item
// list, used across the resolve package's unit tests to avoid repeating
// the map[string]Chain bookkeeping in every test.
func simpleUniverse(items ...universe.Item) *universe.Universe {
	u := &universe.Universe{
		Items:    make(map[string]universe.Chain),
		Provides: make(map[string][]universe.Provider),
	}
	for _, it := range items {
		u.Items[it.Pkg.UID] = append(u.Items[it.Pkg.UID], it)
		for _, p := range it.Pkg.Provides {
			u.Provides[p] = append(u.Provides[p], universe.Provider{UID: it.Pkg.UID, ProvideName: p})
		}
		for _, s := range it.Pkg.ShlibsProvided {
			u.Provides[s] = append(u.Provides[s], universe.Provider{UID: it.Pkg.UID, ProvideName: s, IsShlib: true})
		}
	}
	return u
}

func local(uid, version, digest string) universe.Item {
	return universe.Item{Pkg: universe.Pkg{UID: uid, Version: version, Digest: digest, Type: universe.OriginLocal}}
}

func remote(uid, version, digest string) universe.Item {
	return universe.Item{Pkg: universe.Pkg{UID: uid, Version: version, Digest: digest, Type: universe.OriginRemote}}
}
