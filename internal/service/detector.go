package service

import (
	"iter"

	"change-audit/internal/domain"
)

// Detect yields one FieldChange per field that is present in newFields, audited
// by policy, and different from its value in prior. A field missing from prior
// reads as null. Fields are visited in ascending name order.
//
// The returned sequence is lazy and single-use: ranging over it a second time
// yields nothing.
func Detect(newFields, prior domain.FieldMap, policy *domain.AuditPolicy) iter.Seq[domain.FieldChange] {
	consumed := false
	return func(yield func(domain.FieldChange) bool) {
		if consumed {
			return
		}
		consumed = true

		if policy.IsEmpty() {
			return
		}

		for _, name := range newFields.Names() {
			if !policy.Audits(name) {
				continue
			}

			oldValue := prior.Get(name)
			newValue := newFields[name]
			if domain.Equal(oldValue, newValue) {
				continue
			}

			if !yield(domain.FieldChange{FieldName: name, OldValue: oldValue, NewValue: newValue}) {
				return
			}
		}
	}
}
