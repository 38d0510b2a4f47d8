package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/binpm/resolver/pkg/universe"
)

// universeFile is the on-disk YAML shape the CLI loads a universe and
// request set from. Building a real universe from a local database and
// remote catalogs is out of scope for the resolver core (§1); this is
// purely a fixture format for driving the CLI end to end.
type universeFile struct {
	Candidates []candidateFile    `yaml:"candidates"`
	RequestAdd map[string][]string `yaml:"request_add"`
	RequestDel map[string][]string `yaml:"request_delete"`
}

type candidateFile struct {
	UID            string              `yaml:"uid"`
	Name           string              `yaml:"name"`
	Version        string              `yaml:"version"`
	Digest         string              `yaml:"digest"`
	Origin         string              `yaml:"origin"` // "local" or "remote"
	RepoName       string              `yaml:"reponame"`
	ABI            string              `yaml:"abi"`
	Vital          bool                `yaml:"vital"`
	InHash         bool                `yaml:"in_hash"`
	Depends        [][]string          `yaml:"depends"`
	Conflicts      []conflictFile      `yaml:"conflicts"`
	ShlibsProvided []string            `yaml:"shlibs_provided"`
	ShlibsRequired []string            `yaml:"shlibs_required"`
	Provides       []string            `yaml:"provides"`
	Requires       []string            `yaml:"requires"`
}

type conflictFile struct {
	UID    string `yaml:"uid"`
	Kind   string `yaml:"kind"` // "remote_local" or "remote_remote"
	Digest string `yaml:"digest"`
}

// loadUniverseFile reads and converts a YAML universe fixture into the
// universe.Universe and universe.Requests shapes the resolver core
// consumes.
func loadUniverseFile(path string) (*universe.Universe, universe.Requests, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, universe.Requests{}, errors.Wrapf(err, "reading universe file %q", path)
	}

	var f universeFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, universe.Requests{}, errors.Wrapf(err, "parsing universe file %q", path)
	}

	uni := &universe.Universe{
		Items:    make(map[string]universe.Chain),
		Provides: make(map[string][]universe.Provider),
	}

	for _, c := range f.Candidates {
		origin := universe.OriginRemote
		if c.Origin == "local" {
			origin = universe.OriginLocal
		}

		var depends []universe.AltGroup
		for _, group := range c.Depends {
			depends = append(depends, universe.AltGroup{UIDs: group})
		}

		var conflicts []universe.Conflict
		for _, cf := range c.Conflicts {
			kind := universe.ConflictRemoteLocal
			if cf.Kind == "remote_remote" {
				kind = universe.ConflictRemoteRemote
			}
			conflicts = append(conflicts, universe.Conflict{UID: cf.UID, Kind: kind, Digest: cf.Digest})
		}

		item := universe.Item{
			Pkg: universe.Pkg{
				UID:            c.UID,
				Name:           c.Name,
				Version:        c.Version,
				Digest:         c.Digest,
				Type:           origin,
				RepoName:       c.RepoName,
				ABI:            c.ABI,
				Vital:          c.Vital,
				Depends:        depends,
				Conflicts:      conflicts,
				ShlibsProvided: c.ShlibsProvided,
				ShlibsRequired: c.ShlibsRequired,
				Provides:       c.Provides,
				Requires:       c.Requires,
			},
			InHash: c.InHash,
		}
		uni.Items[c.UID] = append(uni.Items[c.UID], item)

		for _, p := range c.Provides {
			uni.Provides[p] = append(uni.Provides[p], universe.Provider{UID: c.UID, ProvideName: p, IsShlib: false})
		}
		for _, p := range c.ShlibsProvided {
			uni.Provides[p] = append(uni.Provides[p], universe.Provider{UID: c.UID, ProvideName: p, IsShlib: true})
		}
	}

	reqs := universe.Requests{Add: f.RequestAdd, Delete: f.RequestDel}
	return uni, reqs, nil
}
