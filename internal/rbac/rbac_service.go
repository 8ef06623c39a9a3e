package rbac

import (
	"sync"

	"go-onboarding/internal/domain"
	"go-onboarding/internal/rbac/infra"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

type Permission struct {
	Role     string
	Resource string
	Action   string
}

// Grant makes child inherit every permission of parent.
type Grant struct {
	Child  string
	Parent string
}

// DefaultPermissions: VIEWER reads, HR runs the lifecycle, ADMIN also
// restores and hard-deletes.
var DefaultPermissions = []Permission{
	{domain.RoleViewer, domain.ResourceOnboarding, domain.ActionRead},
	{domain.RoleHR, domain.ResourceOnboarding, domain.ActionCreate},
	{domain.RoleHR, domain.ResourceOnboarding, domain.ActionUpdate},
	{domain.RoleHR, domain.ResourceOnboarding, domain.ActionApprove},
	{domain.RoleHR, domain.ResourceOnboarding, domain.ActionTerminate},
	{domain.RoleAdmin, domain.ResourceOnboarding, domain.ActionRestore},
	{domain.RoleAdmin, domain.ResourceOnboarding, domain.ActionDelete},
}

var DefaultGrants = []Grant{
	{Child: domain.RoleHR, Parent: domain.RoleViewer},
	{Child: domain.RoleAdmin, Parent: domain.RoleHR},
}

type Service interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   *zap.Logger
}

func NewService(perms []Permission, grants []Grant, logger ...*zap.Logger) (Service, error) {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}

	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return nil, err
	}
	for _, p := range perms {
		if _, err := enforcer.AddPolicy(p.Role, p.Resource, p.Action); err != nil {
			return nil, err
		}
	}
	for _, g := range grants {
		if _, err := enforcer.AddGroupingPolicy(g.Child, g.Parent); err != nil {
			return nil, err
		}
	}
	l.Info("rbac policy loaded", zap.Int("permissions", len(perms)), zap.Int("grants", len(grants)))

	return &service{enforcer: enforcer, logger: l}, nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed, err := s.enforcer.Enforce(req.Role, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", req.Role),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", req.Role),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}
