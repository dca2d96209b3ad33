package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/expense_management_app/internal/apperrors"
	"github.com/SscSPs/expense_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/expense_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expense_management_app/internal/core/ports/services"
	"github.com/SscSPs/expense_management_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type approvalRuleService struct {
	BaseService
	ruleRepo portsrepo.ApprovalRuleRepositoryFacade
	userRepo portsrepo.UserReader
}

func NewApprovalRuleService(ruleRepo portsrepo.ApprovalRuleRepositoryFacade, userRepo portsrepo.UserReader) portssvc.ApprovalRuleSvcFacade {
	return &approvalRuleService{ruleRepo: ruleRepo, userRepo: userRepo}
}

var _ portssvc.ApprovalRuleSvcFacade = (*approvalRuleService)(nil)

func (s *approvalRuleService) GetRule(ctx context.Context, ruleID string, requestingUserID string) (*domain.ApprovalRule, error) {
	requester, err := s.loadRequester(ctx, s.userRepo, requestingUserID)
	if err != nil {
		return nil, err
	}
	return s.findCompanyRule(ctx, ruleID, requester.CompanyID)
}

func (s *approvalRuleService) ListRules(ctx context.Context, requestingUserID string) ([]domain.ApprovalRule, error) {
	requester, err := s.loadRequester(ctx, s.userRepo, requestingUserID)
	if err != nil {
		return nil, err
	}
	rules, err := s.ruleRepo.ListRulesByCompany(ctx, requester.CompanyID, false)
	if err != nil {
		s.LogError(ctx, err, "Failed to list approval rules", slog.String("company_id", requester.CompanyID))
		return nil, fmt.Errorf("failed to list approval rules: %w", err)
	}
	return rules, nil
}

func (s *approvalRuleService) CreateRule(ctx context.Context, req dto.CreateApprovalRuleRequest, requestingUserID string) (*domain.ApprovalRule, error) {
	admin, err := s.requireAdmin(ctx, s.userRepo, requestingUserID)
	if err != nil {
		return nil, err
	}

	rule := domain.ApprovalRule{
		RuleID:              uuid.NewString(),
		CompanyID:           admin.CompanyID,
		Name:                req.Name,
		Description:         req.Description,
		RuleType:            req.RuleType,
		Approvers:           dto.ToRuleApprovers(req.Approvers),
		PercentageThreshold: req.PercentageThreshold,
		SpecificApproverID:  req.SpecificApproverID,
		IsActive:            true,
		AuditFields:         domain.NewAuditFields(admin.UserID, s.now()),
	}
	if req.MinAmount != nil {
		rule.MinAmount = *req.MinAmount
	}
	if req.MaxAmount != nil {
		rule.MaxAmount = *req.MaxAmount
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	normalizeRule(&rule)

	if err := s.validateRule(ctx, rule); err != nil {
		return nil, err
	}
	if err := s.ruleRepo.SaveRule(ctx, rule); err != nil {
		s.LogError(ctx, err, "Failed to save approval rule", slog.String("rule_id", rule.RuleID))
		return nil, err
	}
	s.LogInfo(ctx, "Approval rule created",
		slog.String("rule_id", rule.RuleID),
		slog.String("rule_type", string(rule.RuleType)))
	return &rule, nil
}

func (s *approvalRuleService) UpdateRule(ctx context.Context, ruleID string, req dto.UpdateApprovalRuleRequest, requestingUserID string) (*domain.ApprovalRule, error) {
	admin, err := s.requireAdmin(ctx, s.userRepo, requestingUserID)
	if err != nil {
		return nil, err
	}
	rule, err := s.findCompanyRule(ctx, ruleID, admin.CompanyID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.Description != nil {
		rule.Description = *req.Description
	}
	if req.RuleType != nil {
		rule.RuleType = *req.RuleType
	}
	if req.Approvers != nil {
		rule.Approvers = dto.ToRuleApprovers(*req.Approvers)
	}
	if req.PercentageThreshold != nil {
		rule.PercentageThreshold = req.PercentageThreshold
	}
	if req.SpecificApproverID != nil {
		rule.SpecificApproverID = req.SpecificApproverID
	}
	if req.MinAmount != nil {
		rule.MinAmount = *req.MinAmount
	}
	if req.MaxAmount != nil {
		rule.MaxAmount = *req.MaxAmount
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	normalizeRule(rule)
	rule.Touch(admin.UserID, s.now())

	if err := s.validateRule(ctx, *rule); err != nil {
		return nil, err
	}
	if err := s.ruleRepo.UpdateRule(ctx, *rule); err != nil {
		s.LogError(ctx, err, "Failed to update approval rule", slog.String("rule_id", ruleID))
		return nil, err
	}
	s.LogInfo(ctx, "Approval rule updated", slog.String("rule_id", ruleID))
	return rule, nil
}

// DeleteRule removes a rule. Workflows already started keep the policy they were created with.
func (s *approvalRuleService) DeleteRule(ctx context.Context, ruleID string, requestingUserID string) error {
	admin, err := s.requireAdmin(ctx, s.userRepo, requestingUserID)
	if err != nil {
		return err
	}
	if _, err := s.findCompanyRule(ctx, ruleID, admin.CompanyID); err != nil {
		return err
	}
	if err := s.ruleRepo.DeleteRule(ctx, ruleID); err != nil {
		s.LogError(ctx, err, "Failed to delete approval rule", slog.String("rule_id", ruleID))
		return err
	}
	s.LogInfo(ctx, "Approval rule deleted", slog.String("rule_id", ruleID))
	return nil
}

func (s *approvalRuleService) findCompanyRule(ctx context.Context, ruleID, companyID string) (*domain.ApprovalRule, error) {
	rule, err := s.ruleRepo.FindRuleByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if rule.CompanyID != companyID {
		return nil, apperrors.NewNotFoundError("approval rule not found")
	}
	return rule, nil
}

// normalizeRule drops parameters the rule type does not use.
func normalizeRule(rule *domain.ApprovalRule) {
	if !rule.RuleType.UsesThreshold() {
		rule.PercentageThreshold = nil
	}
	if !rule.RuleType.UsesSpecificApprover() {
		rule.SpecificApproverID = nil
	}
	if rule.Approvers == nil {
		rule.Approvers = []domain.RuleApprover{}
	}
}

// validateRule checks the rule's own shape, that every referenced user is a live member of the
// company, and that an active rule does not share any amount with another active rule.
func (s *approvalRuleService) validateRule(ctx context.Context, rule domain.ApprovalRule) error {
	problems := ruleShapeProblems(rule)
	if len(problems) > 0 {
		return apperrors.NewValidationFailedError(problems...)
	}

	referenced := make([]string, 0, len(rule.Approvers)+1)
	for _, a := range rule.Approvers {
		referenced = append(referenced, a.UserID)
	}
	if rule.SpecificApproverID != nil {
		referenced = append(referenced, *rule.SpecificApproverID)
	}
	for _, userID := range referenced {
		user, err := s.userRepo.FindUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				problems = append(problems, "approver "+userID+" does not exist")
				continue
			}
			return err
		}
		if user.CompanyID != rule.CompanyID || user.DeletedAt != nil {
			problems = append(problems, "approver "+userID+" is not a member of this company")
		}
	}
	if len(problems) > 0 {
		return apperrors.NewValidationFailedError(problems...)
	}

	if !rule.IsActive {
		return nil
	}
	active, err := s.ruleRepo.ListRulesByCompany(ctx, rule.CompanyID, true)
	if err != nil {
		return fmt.Errorf("failed to check rule overlap: %w", err)
	}
	for _, other := range active {
		if other.RuleID != rule.RuleID && rule.Overlaps(other) {
			return apperrors.NewConflictError(fmt.Sprintf(
				"amount range %s-%s overlaps active rule %q (%s-%s)",
				rule.MinAmount.String(), rule.MaxAmount.String(), other.Name,
				other.MinAmount.String(), other.MaxAmount.String()))
		}
	}
	return nil
}

func ruleShapeProblems(rule domain.ApprovalRule) []string {
	var problems []string
	if rule.Name == "" {
		problems = append(problems, "name is required")
	}
	if !rule.RuleType.IsValid() {
		problems = append(problems, "ruleType must be one of SEQUENTIAL, PERCENTAGE, SPECIFIC, HYBRID")
		return problems
	}
	if rule.MinAmount.IsNegative() {
		problems = append(problems, "minAmount must not be negative")
	}
	if !rule.MinAmount.LessThan(rule.MaxAmount) {
		problems = append(problems, "minAmount must be less than maxAmount")
	}
	if rule.RuleType.UsesThreshold() {
		t := rule.PercentageThreshold
		if t == nil {
			problems = append(problems, "percentageThreshold is required for "+string(rule.RuleType)+" rules")
		} else if t.IsNegative() || t.GreaterThan(decimal.NewFromInt(100)) {
			problems = append(problems, "percentageThreshold must be between 0 and 100")
		} else if !t.Equal(t.Round(2)) {
			problems = append(problems, "percentageThreshold must have at most 2 decimal places")
		}
	}
	if rule.RuleType.UsesSpecificApprover() && (rule.SpecificApproverID == nil || *rule.SpecificApproverID == "") {
		problems = append(problems, "specificApproverID is required for "+string(rule.RuleType)+" rules")
	}
	if (rule.RuleType == domain.RuleSequential || rule.RuleType == domain.RulePercentage || rule.RuleType == domain.RuleHybrid) && len(rule.Approvers) == 0 {
		problems = append(problems, "at least one approver is required for "+string(rule.RuleType)+" rules")
	}
	seen := make(map[string]struct{}, len(rule.Approvers))
	for _, a := range rule.Approvers {
		if _, dup := seen[a.UserID]; dup {
			problems = append(problems, "approver "+a.UserID+" is listed more than once")
		}
		seen[a.UserID] = struct{}{}
		if a.Sequence < 0 {
			problems = append(problems, "approver sequence must not be negative")
		}
	}
	return problems
}
