package object

import (
	"strings"

	"github.com/schemat-io/core/internal/service"
)

// Class is the behavior an object's category attaches to its instances:
// lifecycle hooks plus the endpoint table a Service dispatches against
// (spec §3 "class", §6 "API"). Grounded on the teacher's
// pkg/registry/pod/rest.go, whose RESTStorage implementation bundles
// New/Get/List/Create/Update/Delete/Validate behind one type the
// apiserver installs per resource kind — here, per category.
type Class interface {
	// Init runs at the end of every successful load, after data,
	// prototypes, category, class and schema are in place (spec §3
	// "__init__").
	Init(o *Object) error

	// Validate runs the category's own business-rule checks, in addition
	// to schema.ValidateCatalog's structural checks (spec §4.2.4
	// "__validate__").
	Validate(o *Object) []error

	// Teardown runs in Object.Delete before the stored record is removed
	// (spec §3 "Deleted: record removed; __teardown__ ran").
	Teardown(o *Object) error

	// Endpoints returns this class's METHOD.name -> Service table (spec
	// §6). The table belongs to the Class value; instances share it only
	// if the resolver hands them the same Class (site.ResolveClass builds
	// a new Class on every load).
	Endpoints() map[string]*service.Service
}

// BaseClass is an embeddable no-op Class: categories that only need a
// subset of hooks can embed it and override the rest, the way the
// teacher's lightweight REST storages skip Watch when a resource has no
// use for it.
type BaseClass struct{}

func (BaseClass) Init(*Object) error               { return nil }
func (BaseClass) Validate(*Object) []error          { return nil }
func (BaseClass) Teardown(*Object) error            { return nil }
func (BaseClass) Endpoints() map[string]*service.Service { return nil }

// DefaultClass is installed for objects whose category has no registered
// implementation, or for the root category itself (spec §4.2.2 step 3's
// "__default__" catch-all). It provides the baseline endpoints every
// object answers to.
type DefaultClass struct {
	BaseClass
	endpoints map[string]*service.Service
}

// NewDefaultClass builds the baseline endpoint table: GET.json for a
// canonical record dump, GET.inspect for developer inspection,
// LOCAL.self for routing's default in-process handoff, and LOCAL.text
// for the raw source text of a module-bearing object (spec §6 "Default
// endpoints").
func NewDefaultClass() *DefaultClass {
	d := &DefaultClass{}
	d.endpoints = map[string]*service.Service{
		"GET.json":    service.New(service.NoInput, service.DataRecordEncoder(), nil, jsonEndpoint),
		"GET.inspect": service.New(service.NoInput, service.JsonOutput(), nil, inspectEndpoint),
		"LOCAL.self":  service.New(service.NoInput, service.WebObjectsOutput(), nil, selfEndpoint),
		"LOCAL.text":  service.New(service.NoInput, service.StringOutput(), nil, textEndpoint),
	}
	for name, svc := range d.endpoints {
		svc.Method, _, _ = strings.Cut(name, ".")
	}
	return d
}

func (d *DefaultClass) Endpoints() map[string]*service.Service { return d.endpoints }

// jsonEndpoint serves the object's record: id plus own data, per spec
// §6 "GET::json — JSON form of the object's record" and §3's definition
// of a record as the (id, data) pair.
func jsonEndpoint(target interface{}, _ *service.Request) (interface{}, error) {
	o := target.(*Object)
	id, _ := o.ID()
	return service.RecordPayload{ID: id, Data: o.Data()}, nil
}

func inspectEndpoint(target interface{}, _ *service.Request) (interface{}, error) {
	o := target.(*Object)
	id, _ := o.ID()
	return map[string]interface{}{
		"id":     id,
		"path":   o.Path(),
		"url":    o.URL(),
		"status": string(o.Status()),
		"loaded": o.IsLoaded(),
	}, nil
}

func selfEndpoint(target interface{}, _ *service.Request) (interface{}, error) {
	return target.(*Object), nil
}

// textEndpoint serves the raw source of a module-bearing object: its
// `text` field if declared, otherwise the empty string (spec §6
// "LOCAL::text — raw text of the object (source modules)").
func textEndpoint(target interface{}, _ *service.Request) (interface{}, error) {
	o := target.(*Object)
	v, ok := o.Get("text")
	if !ok {
		return "", nil
	}
	s, _ := v.Plain.(string)
	return s, nil
}
