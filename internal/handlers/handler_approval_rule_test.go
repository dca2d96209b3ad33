package handlers_test

import (
	"net/http"

	"github.com/SscSPs/expense_management_app/internal/apperrors"
	"github.com/SscSPs/expense_management_app/internal/core/domain"
	"github.com/SscSPs/expense_management_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func (s *HandlerTestSuite) ruleBody(approverID string) string {
	return `{
		"name": "Mid-size travel",
		"ruleType": "PERCENTAGE",
		"approvers": [{"userID": "` + approverID + `", "sequence": 0}],
		"percentageThreshold": "60",
		"minAmount": "100",
		"maxAmount": "1000"
	}`
}

func (s *HandlerTestSuite) TestCreateRule_AdminOnly() {
	w := s.do(http.MethodPost, "/api/v1/approval-rules", s.token(s.employeeID, domain.RoleEmployee), s.ruleBody(uuid.NewString()))
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/v1/approval-rules", s.token(uuid.NewString(), domain.RoleManager), s.ruleBody(uuid.NewString()))
	s.Equal(http.StatusForbidden, w.Code)

	s.mockRuleSvc.AssertNotCalled(s.T(), "CreateRule", mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlerTestSuite) TestCreateRule_Success() {
	approverID := uuid.NewString()
	threshold := decimal.NewFromInt(60)
	created := &domain.ApprovalRule{
		RuleID:              uuid.NewString(),
		CompanyID:           s.companyID,
		Name:                "Mid-size travel",
		RuleType:            domain.RulePercentage,
		Approvers:           []domain.RuleApprover{{UserID: approverID}},
		PercentageThreshold: &threshold,
		MinAmount:           decimal.NewFromInt(100),
		MaxAmount:           decimal.NewFromInt(1000),
		IsActive:            true,
	}
	s.mockRuleSvc.On("CreateRule", mock.Anything, mock.MatchedBy(func(req dto.CreateApprovalRuleRequest) bool {
		return req.RuleType == domain.RulePercentage && len(req.Approvers) == 1 &&
			req.PercentageThreshold != nil && req.PercentageThreshold.Equal(threshold)
	}), s.adminID).Return(created, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/approval-rules", s.token(s.adminID, domain.RoleAdmin), s.ruleBody(approverID))

	s.Equal(http.StatusCreated, w.Code, w.Body.String())
}

func (s *HandlerTestSuite) TestCreateRule_OverlapIsConflict() {
	s.mockRuleSvc.On("CreateRule", mock.Anything, mock.Anything, s.adminID).
		Return(nil, apperrors.NewConflictError("amount range overlaps active rule")).Once()

	w := s.do(http.MethodPost, "/api/v1/approval-rules", s.token(s.adminID, domain.RoleAdmin), s.ruleBody(uuid.NewString()))

	s.Equal(http.StatusConflict, w.Code)
	s.Equal("amount range overlaps active rule", s.decodeError(w))
}

func (s *HandlerTestSuite) TestCreateRule_InvalidBody() {
	tok := s.token(s.adminID, domain.RoleAdmin)

	w := s.do(http.MethodPost, "/api/v1/approval-rules", tok, `{"name": "x", "ruleType": "UNANIMOUS", "minAmount": "0", "maxAmount": "10"}`)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/approval-rules", tok, `{"name": "x", "ruleType": "SEQUENTIAL", "approvers": [{"userID": "not-a-uuid"}], "minAmount": "0", "maxAmount": "10"}`)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestListAndDeleteRules() {
	s.mockRuleSvc.On("ListRules", mock.Anything, s.employeeID).Return([]domain.ApprovalRule{}, nil).Once()
	w := s.do(http.MethodGet, "/api/v1/approval-rules", s.token(s.employeeID, domain.RoleEmployee), nil)
	s.Equal(http.StatusOK, w.Code)

	ruleID := uuid.NewString()
	s.mockRuleSvc.On("DeleteRule", mock.Anything, ruleID, s.adminID).Return(nil).Once()
	w = s.do(http.MethodDelete, "/api/v1/approval-rules/"+ruleID, s.token(s.adminID, domain.RoleAdmin), nil)
	s.Equal(http.StatusNoContent, w.Code)

	s.mockRuleSvc.On("DeleteRule", mock.Anything, "gone", s.adminID).Return(apperrors.NewNotFoundError("approval rule not found")).Once()
	w = s.do(http.MethodDelete, "/api/v1/approval-rules/gone", s.token(s.adminID, domain.RoleAdmin), nil)
	s.Equal(http.StatusNotFound, w.Code)
}
