// Package shell contains the infrastructure shared by the feature slices: mapping between domain
// events and eventstore.StorableEvent, event metadata, the command and query handler contracts,
// and the observability helpers used by the observable wrappers.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' or 'adapters' layer.
package shell
