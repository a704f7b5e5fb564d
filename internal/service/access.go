package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"

	"github.com/quillcms/quill/internal/domain"
	"github.com/quillcms/quill/policy"
)

var tracer = otel.Tracer("service")

// AccessService evaluates collection access policies. Decisions that do
// not depend on candidate data are cached briefly; access checks run on
// every operation and the policy set only changes on reload.
type AccessService struct {
	policies map[string]policy.PolicyDocument
	cache    *gocache.Cache
}

func NewAccessService(policies map[string]policy.PolicyDocument) *AccessService {
	return &AccessService{
		policies: policies,
		cache:    gocache.New(time.Minute, 5*time.Minute),
	}
}

func (s *AccessService) Evaluate(ctx context.Context, principal domain.Principal, kind domain.OperationKind, col domain.CollectionConfig, data map[string]any) (domain.AccessDecision, error) {
	_, span := tracer.Start(ctx, "Access.Service.Evaluate")
	defer span.End()

	policyName, ok := col.Access[kind]
	if !ok {
		// collections without a policy for this operation are open
		return domain.AccessDecision{Allowed: true}, nil
	}

	cacheKey := ""
	if data == nil {
		// roles are part of the key so a principal whose roles change
		// never inherits a stale decision for the TTL
		cacheKey = fmt.Sprintf("%s/%s/%s/%s", principal.ID, strings.Join(principal.Roles, ","), col.Slug, kind)
		if cached, found := s.cache.Get(cacheKey); found {
			return cached.(domain.AccessDecision), nil
		}
	}

	policydoc, ok := s.policies[policyName]
	if !ok {
		err := fmt.Errorf("unknown access policy: %s", policyName)
		span.RecordError(err)
		return domain.AccessDecision{}, err
	}

	reqctx := policy.RequestContext{
		Principal: principalToMap(principal),
		Document:  data,
		Params: map[string]any{
			"collection": col.Slug,
			"operation":  string(kind),
		},
	}

	result, err := policy.EvaluateAccess(policydoc, reqctx, string(kind))
	if err != nil {
		span.RecordError(err)
		return domain.AccessDecision{}, err
	}

	decision := domain.AccessDecision{
		Allowed: policy.SummarizeConclusion([]policy.Conclusion{result.Conclusion}, false),
	}
	if decision.Allowed && result.Filter != nil {
		decision.Filter = domain.Filter(result.Filter)
	}

	if cacheKey != "" {
		s.cache.Set(cacheKey, decision, gocache.DefaultExpiration)
	}

	return decision, nil
}

func principalToMap(p domain.Principal) map[string]any {
	roles := make([]any, 0, len(p.Roles))
	for _, r := range p.Roles {
		roles = append(roles, r)
	}
	m := map[string]any{
		"id":    p.ID,
		"roles": roles,
	}
	for k, v := range p.Attrs {
		m[k] = v
	}
	return m
}
