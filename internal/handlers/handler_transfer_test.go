package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/moneypools/money_pools_app/internal/apperrors"
	"github.com/moneypools/money_pools_app/internal/core/domain"
	portssvc "github.com/moneypools/money_pools_app/internal/core/ports/services"
	"github.com/moneypools/money_pools_app/internal/dto"
	"github.com/moneypools/money_pools_app/internal/handlers"
	"github.com/moneypools/money_pools_app/internal/utils"
	"github.com/moneypools/money_pools_app/pkg/config"
)

// --- Mock TransferService ---

type MockTransferService struct {
	mock.Mock
}

func (m *MockTransferService) CreateTransfer(ctx context.Context, req dto.CreateTransferRequest, creatorUserID string) (*domain.Transfer, []domain.AccountBalance, error) {
	args := m.Called(ctx, req, creatorUserID)
	var transfer *domain.Transfer
	if args.Get(0) != nil {
		transfer = args.Get(0).(*domain.Transfer)
	}
	var balances []domain.AccountBalance
	if args.Get(1) != nil {
		balances = args.Get(1).([]domain.AccountBalance)
	}
	return transfer, balances, args.Error(2)
}

func (m *MockTransferService) GetTransferByID(ctx context.Context, transferID string) (*domain.Transfer, error) {
	args := m.Called(ctx, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transfer), args.Error(1)
}

func (m *MockTransferService) ListTransfersByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Transfer, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transfer), args.Error(1)
}

func (m *MockTransferService) ListTransfersByPool(ctx context.Context, poolID string, limit, offset int) ([]domain.Transfer, error) {
	args := m.Called(ctx, poolID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transfer), args.Error(1)
}

var _ portssvc.TransferSvcFacade = (*MockTransferService)(nil)

// --- Mock PoolService ---

type MockPoolService struct {
	mock.Mock
}

func (m *MockPoolService) AuthorizePoolAction(ctx context.Context, userID, poolID string, requiredRole domain.PoolRole) error {
	args := m.Called(ctx, userID, poolID, requiredRole)
	return args.Error(0)
}

func (m *MockPoolService) CreatePool(ctx context.Context, req dto.CreatePoolRequest, creatorUserID string) (*domain.Pool, []string, error) {
	args := m.Called(ctx, req, creatorUserID)
	var pool *domain.Pool
	if args.Get(0) != nil {
		pool = args.Get(0).(*domain.Pool)
	}
	var nonExistent []string
	if args.Get(1) != nil {
		nonExistent = args.Get(1).([]string)
	}
	return pool, nonExistent, args.Error(2)
}

func (m *MockPoolService) ListUserPools(ctx context.Context, userID string) ([]domain.Pool, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Pool), args.Error(1)
}

func (m *MockPoolService) GetPoolWithMembers(ctx context.Context, poolID, requestingUserID string) (*domain.Pool, []domain.PoolMember, error) {
	args := m.Called(ctx, poolID, requestingUserID)
	var pool *domain.Pool
	if args.Get(0) != nil {
		pool = args.Get(0).(*domain.Pool)
	}
	var members []domain.PoolMember
	if args.Get(1) != nil {
		members = args.Get(1).([]domain.PoolMember)
	}
	return pool, members, args.Error(2)
}

func (m *MockPoolService) UpdatePool(ctx context.Context, poolID string, req dto.UpdatePoolRequest, updaterUserID string) (*domain.Pool, error) {
	args := m.Called(ctx, poolID, req, updaterUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pool), args.Error(1)
}

func (m *MockPoolService) DeactivatePool(ctx context.Context, poolID, requestingUserID string) error {
	args := m.Called(ctx, poolID, requestingUserID)
	return args.Error(0)
}

func (m *MockPoolService) AddMember(ctx context.Context, poolID string, req dto.AddPoolMemberRequest, addingUserID string) (*domain.PoolMember, error) {
	args := m.Called(ctx, poolID, req, addingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PoolMember), args.Error(1)
}

func (m *MockPoolService) RemoveMember(ctx context.Context, poolID, targetUserID, requestingUserID string) error {
	args := m.Called(ctx, poolID, targetUserID, requestingUserID)
	return args.Error(0)
}

func (m *MockPoolService) ChangeMemberRole(ctx context.Context, poolID, targetUserID string, newRole domain.PoolRole, requestingUserID string) error {
	args := m.Called(ctx, poolID, targetUserID, newRole, requestingUserID)
	return args.Error(0)
}

var _ portssvc.PoolSvcFacade = (*MockPoolService)(nil)

// --- Mock UserService ---

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, updaterUserID string) (*domain.User, error) {
	args := m.Called(ctx, userID, req, updaterUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, userID, deleterUserID string) error {
	args := m.Called(ctx, userID, deleterUserID)
	return args.Error(0)
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

// --- Test Suite ---

const testJWTSecret = "test-secret"

type TransferHandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	mockTransferSvc *MockTransferService
	mockPoolSvc     *MockPoolService
	mockUserSvc     *MockUserService
}

func (suite *TransferHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	if err := dto.RegisterCustomValidations(); err != nil {
		suite.T().Fatalf("failed to register validations: %v", err)
	}

	suite.mockTransferSvc = new(MockTransferService)
	suite.mockPoolSvc = new(MockPoolService)
	suite.mockUserSvc = new(MockUserService)

	cfg := &config.Config{
		JWTSecret:         testJWTSecret,
		JWTExpiryDuration: time.Hour,
		JWTIssuer:         "money-pools-test",
		LoginRateLimit:    "100-M",
	}
	svc := &portssvc.ServiceContainer{
		User:     suite.mockUserSvc,
		Pool:     suite.mockPoolSvc,
		Transfer: suite.mockTransferSvc,
	}

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, cfg, svc, slog.Default())
}

func (suite *TransferHandlerTestSuite) authToken(userID string) string {
	token, err := utils.GenerateJWT(userID, testJWTSecret, time.Hour, "money-pools-test")
	suite.Require().NoError(err)
	return token
}

func (suite *TransferHandlerTestSuite) doRequest(method, path, userID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+suite.authToken(userID))
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func strPtr(s string) *string { return &s }

// --- Tests ---

func (suite *TransferHandlerTestSuite) TestHealth() {
	w := suite.doRequest(http.MethodGet, "/health", "", nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *TransferHandlerTestSuite) TestCreateTransfer_Unauthorized() {
	w := suite.doRequest(http.MethodPost, "/api/v1/transfers", "", gin.H{})
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *TransferHandlerTestSuite) TestCreateTransfer_Success() {
	reqBody := dto.CreateTransferRequest{
		FromUserID: strPtr("user-a"),
		ToPoolID:   strPtr("pool-a"),
		Amount:     1500,
		Kind:       string(domain.PersonToPool),
	}
	transfer := &domain.Transfer{
		TransferID: "t-1",
		TransferParties: domain.TransferParties{
			FromUserID: strPtr("user-a"),
			ToPoolID:   strPtr("pool-a"),
		},
		Amount:    1500,
		Kind:      domain.PersonToPool,
		CreatedAt: time.Now().UTC(),
		CreatedBy: "user-a",
	}
	balances := []domain.AccountBalance{
		{AccountKind: domain.AccountUser, AccountID: "user-a", Balance: 8500},
		{AccountKind: domain.AccountPool, AccountID: "pool-a", Balance: 1500},
	}

	suite.mockTransferSvc.On("CreateTransfer", mock.Anything, mock.AnythingOfType("dto.CreateTransferRequest"), "user-a").
		Return(transfer, balances, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/transfers", "user-a", reqBody)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.TransferResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("t-1", resp.TransferID)
	suite.Equal(int64(1500), resp.Amount)
	suite.Equal("15.00", resp.AmountFormatted)
	suite.Len(resp.AccountBalances, 2)
	suite.mockTransferSvc.AssertExpectations(suite.T())
}

func (suite *TransferHandlerTestSuite) TestCreateTransfer_UnknownKind_BadRequest() {
	// The transferkind binding rule rejects it before the service is hit.
	reqBody := gin.H{
		"from_user_id":     "user-a",
		"to_user_id":       "user-b",
		"amount":           100,
		"transaction_type": "wire_transfer",
	}

	w := suite.doRequest(http.MethodPost, "/api/v1/transfers", "user-a", reqBody)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockTransferSvc.AssertNotCalled(suite.T(), "CreateTransfer")
}

func (suite *TransferHandlerTestSuite) TestCreateTransfer_InsufficientFunds_Unprocessable() {
	reqBody := dto.CreateTransferRequest{
		FromUserID: strPtr("user-a"),
		ToUserID:   strPtr("user-b"),
		Amount:     100000,
		Kind:       string(domain.PersonToPerson),
	}

	suite.mockTransferSvc.On("CreateTransfer", mock.Anything, mock.AnythingOfType("dto.CreateTransferRequest"), "user-a").
		Return(nil, nil, apperrors.ErrInsufficientFunds).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/transfers", "user-a", reqBody)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *TransferHandlerTestSuite) TestCreateTransfer_AccountNotFound() {
	reqBody := dto.CreateTransferRequest{
		FromUserID: strPtr("user-a"),
		ToUserID:   strPtr("ghost"),
		Amount:     100,
		Kind:       string(domain.PersonToPerson),
	}

	suite.mockTransferSvc.On("CreateTransfer", mock.Anything, mock.AnythingOfType("dto.CreateTransferRequest"), "user-a").
		Return(nil, nil, apperrors.ErrNotFound).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/transfers", "user-a", reqBody)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TransferHandlerTestSuite) TestListUserTransfers_OwnHistory() {
	transfers := []domain.Transfer{
		{TransferID: "t-2", Amount: 200, Kind: domain.PersonToPerson, CreatedBy: "user-a"},
		{TransferID: "t-1", Amount: 100, Kind: domain.PersonToPool, CreatedBy: "user-a"},
	}
	suite.mockTransferSvc.On("ListTransfersByUser", mock.Anything, "user-a", 50, 0).
		Return(transfers, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/users/user-a/transfers", "user-a", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListTransfersResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Transfers, 2)
	suite.Equal("t-2", resp.Transfers[0].TransferID)
}

func (suite *TransferHandlerTestSuite) TestListUserTransfers_OtherUser_Forbidden() {
	w := suite.doRequest(http.MethodGet, "/api/v1/users/user-b/transfers", "user-a", nil)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockTransferSvc.AssertNotCalled(suite.T(), "ListTransfersByUser")
}

func (suite *TransferHandlerTestSuite) TestListPoolTransfers_MemberOnly() {
	suite.mockPoolSvc.On("AuthorizePoolAction", mock.Anything, "user-a", "pool-1", domain.RoleMember).
		Return(nil).Once()
	suite.mockTransferSvc.On("ListTransfersByPool", mock.Anything, "pool-1", 50, 0).
		Return([]domain.Transfer{{TransferID: "t-9"}}, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/pools/pool-1/transfers", "user-a", nil)

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *TransferHandlerTestSuite) TestListPoolTransfers_NonMember_Forbidden() {
	suite.mockPoolSvc.On("AuthorizePoolAction", mock.Anything, "outsider", "pool-1", domain.RoleMember).
		Return(apperrors.ErrForbidden).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/pools/pool-1/transfers", "outsider", nil)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockTransferSvc.AssertNotCalled(suite.T(), "ListTransfersByPool")
}

func (suite *TransferHandlerTestSuite) TestGetTransfer_NotFound() {
	suite.mockTransferSvc.On("GetTransferByID", mock.Anything, "missing").
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/transfers/missing", "user-a", nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func TestTransferHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TransferHandlerTestSuite))
}
