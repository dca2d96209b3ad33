package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/expense_management_app/internal/apperrors"
	"github.com/SscSPs/expense_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/expense_management_app/internal/core/ports/services"
	"github.com/SscSPs/expense_management_app/internal/core/services"
	"github.com/SscSPs/expense_management_app/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type ApprovalRuleServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	store    *memStore
	service  portssvc.ApprovalRuleSvcFacade
	admin    domain.User
	employee domain.User
	managers []domain.User
}

func TestApprovalRuleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ApprovalRuleServiceTestSuite))
}

func (s *ApprovalRuleServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = newMemStore()
	s.service = services.NewApprovalRuleService(s.store, s.store)

	companyID := uuid.NewString()
	s.store.companies[companyID] = domain.Company{CompanyID: companyID, Name: "Acme", CurrencyCode: "USD"}
	newUser := func(role domain.UserRole) domain.User {
		u := domain.User{UserID: uuid.NewString(), CompanyID: companyID, Name: string(role), Email: uuid.NewString() + "@acme.test", Role: role}
		s.store.users[u.UserID] = u
		return u
	}
	s.admin = newUser(domain.RoleAdmin)
	s.employee = newUser(domain.RoleEmployee)
	s.managers = []domain.User{newUser(domain.RoleManager), newUser(domain.RoleManager)}
}

func (s *ApprovalRuleServiceTestSuite) percentageRequest(min, max string) dto.CreateApprovalRuleRequest {
	return dto.CreateApprovalRuleRequest{
		Name:     "mid-range",
		RuleType: domain.RulePercentage,
		Approvers: []dto.RuleApproverRequest{
			{UserID: s.managers[0].UserID},
			{UserID: s.managers[1].UserID},
		},
		PercentageThreshold: ptr(dec("50")),
		SpecificApproverID:  &s.managers[0].UserID,
		MinAmount:           ptr(dec(min)),
		MaxAmount:           ptr(dec(max)),
	}
}

func (s *ApprovalRuleServiceTestSuite) TestCreateRule_Success() {
	rule, err := s.service.CreateRule(s.ctx, s.percentageRequest("0", "1000"), s.admin.UserID)

	s.Require().NoError(err)
	s.NotEmpty(rule.RuleID)
	s.Equal(s.admin.CompanyID, rule.CompanyID)
	s.True(rule.IsActive)
	s.Nil(rule.SpecificApproverID, "specific approver is dropped for percentage rules")
	s.Contains(s.store.rules, rule.RuleID)
}

func (s *ApprovalRuleServiceTestSuite) TestCreateRule_RequiresAdmin() {
	_, err := s.service.CreateRule(s.ctx, s.percentageRequest("0", "1000"), s.employee.UserID)

	s.ErrorIs(err, apperrors.ErrForbidden)
	s.Empty(s.store.rules)
}

func (s *ApprovalRuleServiceTestSuite) TestCreateRule_ShapeValidation() {
	cases := []struct {
		name   string
		mutate func(*dto.CreateApprovalRuleRequest)
		want   string
	}{
		{"inverted range", func(r *dto.CreateApprovalRuleRequest) { r.MinAmount = ptr(dec("500")); r.MaxAmount = ptr(dec("100")) }, "minAmount must be less than maxAmount"},
		{"negative min", func(r *dto.CreateApprovalRuleRequest) { r.MinAmount = ptr(dec("-1")) }, "minAmount must not be negative"},
		{"missing threshold", func(r *dto.CreateApprovalRuleRequest) { r.PercentageThreshold = nil }, "percentageThreshold is required"},
		{"threshold above 100", func(r *dto.CreateApprovalRuleRequest) { r.PercentageThreshold = ptr(dec("101")) }, "between 0 and 100"},
		{"threshold too precise", func(r *dto.CreateApprovalRuleRequest) { r.PercentageThreshold = ptr(dec("66.667")) }, "at most 2 decimal places"},
		{"no approvers", func(r *dto.CreateApprovalRuleRequest) { r.Approvers = nil }, "at least one approver"},
		{"duplicate approver", func(r *dto.CreateApprovalRuleRequest) { r.Approvers[1] = r.Approvers[0] }, "listed more than once"},
		{"specific without approver", func(r *dto.CreateApprovalRuleRequest) {
			r.RuleType = domain.RuleSpecific
			r.SpecificApproverID = nil
		}, "specificApproverID is required"},
		{"hybrid without approvers", func(r *dto.CreateApprovalRuleRequest) {
			r.RuleType = domain.RuleHybrid
			r.Approvers = nil
		}, "at least one approver"},
		{"unknown approver", func(r *dto.CreateApprovalRuleRequest) {
			r.Approvers = []dto.RuleApproverRequest{{UserID: uuid.NewString()}}
		}, "does not exist"},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			req := s.percentageRequest("0", "1000")
			tc.mutate(&req)

			_, err := s.service.CreateRule(s.ctx, req, s.admin.UserID)

			s.Require().Error(err)
			s.ErrorIs(err, apperrors.ErrValidation)
			s.Contains(err.Error(), tc.want)
		})
	}
	s.Empty(s.store.rules)
}

func (s *ApprovalRuleServiceTestSuite) TestCreateRule_ThresholdTrailingZerosAccepted() {
	req := s.percentageRequest("0", "1000")
	req.PercentageThreshold = ptr(dec("66.500"))

	rule, err := s.service.CreateRule(s.ctx, req, s.admin.UserID)

	s.Require().NoError(err)
	s.True(rule.PercentageThreshold.Equal(dec("66.5")))
}

func (s *ApprovalRuleServiceTestSuite) TestCreateRule_ApproverFromOtherCompany() {
	stranger := domain.User{UserID: uuid.NewString(), CompanyID: uuid.NewString(), Role: domain.RoleManager}
	s.store.users[stranger.UserID] = stranger
	req := s.percentageRequest("0", "1000")
	req.Approvers = append(req.Approvers, dto.RuleApproverRequest{UserID: stranger.UserID})

	_, err := s.service.CreateRule(s.ctx, req, s.admin.UserID)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.Contains(err.Error(), "not a member of this company")
}

func (s *ApprovalRuleServiceTestSuite) TestCreateRule_OverlapWithActiveRuleConflicts() {
	_, err := s.service.CreateRule(s.ctx, s.percentageRequest("0", "1000"), s.admin.UserID)
	s.Require().NoError(err)

	_, err = s.service.CreateRule(s.ctx, s.percentageRequest("1000", "5000"), s.admin.UserID)
	s.ErrorIs(err, apperrors.ErrConflict)

	_, err = s.service.CreateRule(s.ctx, s.percentageRequest("1000.01", "5000"), s.admin.UserID)
	s.NoError(err)
}

func (s *ApprovalRuleServiceTestSuite) TestCreateRule_InactiveRuleMayOverlap() {
	_, err := s.service.CreateRule(s.ctx, s.percentageRequest("0", "1000"), s.admin.UserID)
	s.Require().NoError(err)

	req := s.percentageRequest("500", "5000")
	req.IsActive = ptr(false)
	_, err = s.service.CreateRule(s.ctx, req, s.admin.UserID)

	s.NoError(err)
}

func (s *ApprovalRuleServiceTestSuite) TestUpdateRule_ChangesTypeAndRevalidates() {
	rule, err := s.service.CreateRule(s.ctx, s.percentageRequest("0", "1000"), s.admin.UserID)
	s.Require().NoError(err)

	sequential := domain.RuleSequential
	updated, err := s.service.UpdateRule(s.ctx, rule.RuleID, dto.UpdateApprovalRuleRequest{RuleType: &sequential}, s.admin.UserID)

	s.Require().NoError(err)
	s.Equal(domain.RuleSequential, updated.RuleType)
	s.Nil(updated.PercentageThreshold)
	s.Equal(domain.RuleSequential, s.store.rules[rule.RuleID].RuleType)

	_, err = s.service.UpdateRule(s.ctx, rule.RuleID, dto.UpdateApprovalRuleRequest{MaxAmount: ptr(dec("0"))}, s.admin.UserID)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ApprovalRuleServiceTestSuite) TestUpdateRule_DoesNotConflictWithItself() {
	rule, err := s.service.CreateRule(s.ctx, s.percentageRequest("0", "1000"), s.admin.UserID)
	s.Require().NoError(err)

	_, err = s.service.UpdateRule(s.ctx, rule.RuleID, dto.UpdateApprovalRuleRequest{MaxAmount: ptr(dec("2000"))}, s.admin.UserID)

	s.NoError(err)
}

func (s *ApprovalRuleServiceTestSuite) TestGetRule_OtherCompanyIsNotFound() {
	foreign := domain.ApprovalRule{RuleID: uuid.NewString(), CompanyID: uuid.NewString(), Name: "theirs", RuleType: domain.RuleSequential}
	s.store.rules[foreign.RuleID] = foreign

	_, err := s.service.GetRule(s.ctx, foreign.RuleID, s.employee.UserID)

	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *ApprovalRuleServiceTestSuite) TestListRules_VisibleToEmployees() {
	_, err := s.service.CreateRule(s.ctx, s.percentageRequest("0", "1000"), s.admin.UserID)
	s.Require().NoError(err)

	rules, err := s.service.ListRules(s.ctx, s.employee.UserID)

	s.Require().NoError(err)
	s.Len(rules, 1)
}

func (s *ApprovalRuleServiceTestSuite) TestDeleteRule() {
	rule, err := s.service.CreateRule(s.ctx, s.percentageRequest("0", "1000"), s.admin.UserID)
	s.Require().NoError(err)

	s.ErrorIs(s.service.DeleteRule(s.ctx, rule.RuleID, s.employee.UserID), apperrors.ErrForbidden)
	s.Require().NoError(s.service.DeleteRule(s.ctx, rule.RuleID, s.admin.UserID))
	s.NotContains(s.store.rules, rule.RuleID)
	s.ErrorIs(s.service.DeleteRule(s.ctx, rule.RuleID, s.admin.UserID), apperrors.ErrNotFound)
}
