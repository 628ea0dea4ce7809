package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"change-audit/internal/domain"

	"github.com/hashicorp/golang-lru/v2/expirable"
	log "github.com/sirupsen/logrus"
)

type ConfigurationStore interface {
	FindByEntity(ctx context.Context, logicalName string) (*domain.AuditConfiguration, error)
}

// PolicyCache keeps resolved policies, including "not configured" results,
// for a bounded time. A nil *PolicyCache is valid and caches nothing.
type PolicyCache struct {
	lru *expirable.LRU[string, *domain.AuditPolicy]
}

// NewPolicyCache returns nil when size is not positive.
func NewPolicyCache(size int, ttl time.Duration) *PolicyCache {
	if size <= 0 {
		return nil
	}
	return &PolicyCache{lru: expirable.NewLRU[string, *domain.AuditPolicy](size, nil, ttl)}
}

func (c *PolicyCache) Get(entityType string) (*domain.AuditPolicy, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(entityType)
}

func (c *PolicyCache) Add(entityType string, policy *domain.AuditPolicy) {
	if c == nil {
		return
	}
	c.lru.Add(entityType, policy)
}

func (c *PolicyCache) Purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

type PolicyResolver struct {
	store   ConfigurationStore
	cache   *PolicyCache
	metrics Recorder
}

func NewPolicyResolver(store ConfigurationStore, cache *PolicyCache, rec Recorder) *PolicyResolver {
	return &PolicyResolver{
		store:   store,
		cache:   cache,
		metrics: orNoop(rec),
	}
}

// Resolve returns the audit policy of entityType. A nil policy with a nil
// error means the entity is not configured for auditing.
func (r *PolicyResolver) Resolve(ctx context.Context, entityType string) (*domain.AuditPolicy, error) {
	if entityType == "" {
		return nil, fmt.Errorf("%w: entity type is required", domain.ErrInvalidInvocation)
	}

	if policy, ok := r.cache.Get(entityType); ok {
		r.metrics.ObservePolicyLookup(true)
		return policy, nil
	}

	cfg, err := r.store.FindByEntity(ctx, entityType)
	r.metrics.ObservePolicyLookup(false)
	if err != nil {
		if errors.Is(err, domain.ErrConfigurationNotFound) {
			log.WithField("entity", entityType).Debug("No audit configuration found")
			r.cache.Add(entityType, nil)
			return nil, nil
		}
		return nil, fmt.Errorf("%w: entity %q: %w", domain.ErrConfigurationLookup, entityType, err)
	}

	var policy *domain.AuditPolicy
	if cfg != nil {
		policy = domain.PolicyFromConfiguration(*cfg)
	}
	if policy.IsEmpty() {
		log.WithField("entity", entityType).Debug("Audit configuration has no attributes")
		policy = nil
	}

	r.cache.Add(entityType, policy)
	return policy, nil
}
