package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AttributeSeparator splits the configured attribute list.
const AttributeSeparator = ","

// AuditConfiguration is a row of the configuration store.
type AuditConfiguration struct {
	LogicalName string `json:"logicalname"`
	Attributes  string `json:"attributes"`
}

// AuditPolicy is the set of fields audited for one entity type.
type AuditPolicy struct {
	EntityType    string
	AuditedFields map[string]struct{}
}

func NewAuditPolicy(entityType string, fields []string) *AuditPolicy {
	p := &AuditPolicy{
		EntityType:    entityType,
		AuditedFields: make(map[string]struct{}, len(fields)),
	}
	for _, f := range fields {
		p.AuditedFields[f] = struct{}{}
	}
	return p
}

// PolicyFromConfiguration parses the attribute list of a configuration row.
func PolicyFromConfiguration(cfg AuditConfiguration) *AuditPolicy {
	return NewAuditPolicy(cfg.LogicalName, ParseAttributeList(cfg.Attributes))
}

// ParseAttributeList splits a comma-separated list, trimming blanks and
// dropping empty entries.
func ParseAttributeList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, AttributeSeparator)
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			fields = append(fields, p)
		}
	}
	return fields
}

// IsEmpty is true for a nil policy or one without fields; both mean "not configured".
func (p *AuditPolicy) IsEmpty() bool {
	return p == nil || len(p.AuditedFields) == 0
}

func (p *AuditPolicy) Audits(field string) bool {
	if p == nil {
		return false
	}
	_, ok := p.AuditedFields[field]
	return ok
}

// Fields returns the audited field names in ascending order.
func (p *AuditPolicy) Fields() []string {
	if p == nil {
		return nil
	}
	fields := make([]string, 0, len(p.AuditedFields))
	for f := range p.AuditedFields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// FieldChange is a detected difference on an audited field.
type FieldChange struct {
	FieldName string
	OldValue  Value
	NewValue  Value
}

// AuditEntry is one durable record of a single field change.
type AuditEntry struct {
	EntityName string    `json:"entityname"`
	RecordID   string    `json:"recordid"`
	FieldName  string    `json:"fieldname"`
	OldValue   *string   `json:"oldvalue"`
	NewValue   *string   `json:"newvalue"`
	UserID     uuid.UUID `json:"userid"`
	Operation  string    `json:"operation"`
	CreatedOn  time.Time `json:"createdon"`
}

// NewAuditEntry converts a change into an entry stamped with createdOn in UTC.
func NewAuditEntry(change FieldChange, mc MutationContext, createdOn time.Time) AuditEntry {
	return AuditEntry{
		EntityName: mc.EntityType,
		RecordID:   mc.RecordID.String(),
		FieldName:  change.FieldName,
		OldValue:   change.OldValue.TextPtr(),
		NewValue:   change.NewValue.TextPtr(),
		UserID:     mc.ActorID,
		Operation:  mc.OperationName,
		CreatedOn:  createdOn.UTC(),
	}
}
