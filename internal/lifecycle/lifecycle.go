// Package lifecycle holds the status transition tables for the console's
// lifecycle entities and one generic check over them.
package lifecycle

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jwalitptl/clinic-console/internal/model"
)

type Entity string

const (
	Appointment   Entity = "appointment"
	Record        Entity = "record"
	Prescription  Entity = "prescription"
	SupplierOrder Entity = "supplier_order"
)

// Table maps each declared state to the states it may move to.
// A state with an empty set is terminal.
type Table map[string][]string

var tables = map[Entity]Table{
	Appointment: {
		string(model.AppointmentStatusPending):   {string(model.AppointmentStatusCompleted), string(model.AppointmentStatusCancelled)},
		string(model.AppointmentStatusCompleted): {},
		string(model.AppointmentStatusCancelled): {},
	},
	Record: {
		string(model.RecordStatusDraft):     {string(model.RecordStatusFinalized)},
		string(model.RecordStatusFinalized): {string(model.RecordStatusArchived)},
		string(model.RecordStatusArchived):  {},
	},
	Prescription: {
		string(model.PrescriptionStatusPending):   {string(model.PrescriptionStatusApproved)},
		string(model.PrescriptionStatusApproved):  {string(model.PrescriptionStatusDispensed)},
		string(model.PrescriptionStatusDispensed): {},
	},
	SupplierOrder: {
		string(model.OrderStatusPending):   {string(model.OrderStatusCompleted), string(model.OrderStatusCancelled)},
		string(model.OrderStatusCompleted): {},
		string(model.OrderStatusCancelled): {},
	},
}

var ErrIllegalTransition = errors.New("illegal status transition")

// TransitionError is returned when a status change is not in the table.
type TransitionError struct {
	Entity Entity
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal %s status transition from %q to %q", e.Entity, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrIllegalTransition }

// EnvelopeCode marks the rejection as a validation failure.
func (e *TransitionError) EnvelopeCode() int { return 400 }

// Entities lists every entity kind with a table.
func Entities() []Entity {
	out := make([]Entity, 0, len(tables))
	for e := range tables {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// States returns the declared states of entity in sorted order.
func States(entity Entity) []string {
	t := tables[entity]
	out := make([]string, 0, len(t))
	for s := range t {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Allowed returns the states reachable from `from` in one step.
func Allowed(entity Entity, from string) []string {
	next := tables[entity][from]
	out := make([]string, len(next))
	copy(out, next)
	return out
}

// Declared reports whether status is a member of entity's status set.
func Declared[S ~string](entity Entity, status S) bool {
	_, ok := tables[entity][string(status)]
	return ok
}

// CanTransition reports whether entity may move from `from` to `to`.
func CanTransition[S ~string](entity Entity, from, to S) bool {
	for _, next := range tables[entity][string(from)] {
		if next == string(to) {
			return true
		}
	}
	return false
}

// Apply validates the transition and returns a *TransitionError when it is
// not allowed. It never mutates anything; callers change the status only
// after Apply returns nil.
func Apply[S ~string](entity Entity, from, to S) error {
	if !CanTransition(entity, from, to) {
		return &TransitionError{Entity: entity, From: string(from), To: string(to)}
	}
	return nil
}
