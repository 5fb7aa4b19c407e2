// Package storefactory builds a store.Store from the layer list in
// internal/config, dialing a real backend per DSN scheme (spec §6 "a
// store may be layered"). Split out from internal/store itself so that
// package can stay free of a dependency on every concrete backend
// (etcdstore, memory) it would otherwise need to import here, which
// would cycle back through their own imports of internal/store.
package storefactory

import (
	"net/url"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/schemat-io/core/internal/schematerr"
	"github.com/schemat-io/core/internal/store"
	"github.com/schemat-io/core/internal/store/etcdstore"
	"github.com/schemat-io/core/internal/store/memory"
)

// LayerSpec names one configured layer: Name is free text for logging,
// DSN is scheme-prefixed ("memory://", "etcd://host:port/prefix"),
// ReadOnly marks a layer writes should never land on (spec §6 "a
// read-only layer forwards writes to the layer above").
type LayerSpec struct {
	Name     string
	DSN      string
	ReadOnly bool
}

// BuildLayered constructs a memory.Layered store from specs, outermost
// (writable) first, dialing a real backend per DSN scheme. A single
// "memory://" spec with no siblings returns the bare memory.Store instead
// of wrapping it, since a one-layer stack needs no layering at all.
func BuildLayered(specs []LayerSpec) (store.Store, error) {
	if len(specs) == 0 {
		return nil, schematerr.Internal("store: no layers configured")
	}
	if len(specs) == 1 && !specs[0].ReadOnly {
		return buildOne(specs[0])
	}

	layers := make([]memory.Layer, 0, len(specs))
	for _, spec := range specs {
		s, err := buildOne(spec)
		if err != nil {
			return nil, err
		}
		layers = append(layers, memory.Layer{Store: s, ReadOnly: spec.ReadOnly})
	}
	return memory.NewLayered(layers...), nil
}

func buildOne(spec LayerSpec) (store.Store, error) {
	u, err := url.Parse(spec.DSN)
	if err != nil {
		return nil, schematerr.Internal("store: layer %q has invalid dsn %q: %v", spec.Name, spec.DSN, err)
	}
	switch u.Scheme {
	case "memory", "":
		return memory.New(1), nil
	case "etcd":
		endpoints := []string{u.Host}
		client, err := clientv3.New(clientv3.Config{
			Endpoints:   endpoints,
			DialTimeout: 5 * time.Second,
		})
		if err != nil {
			return nil, schematerr.Internal("store: layer %q: dialing etcd %v: %v", spec.Name, endpoints, err)
		}
		prefix := strings.TrimPrefix(u.Path, "/")
		return etcdstore.New(client, prefix), nil
	default:
		return nil, schematerr.Internal("store: layer %q has unsupported dsn scheme %q", spec.Name, u.Scheme)
	}
}
