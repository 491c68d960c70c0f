package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/moneypools/money_pools_app/internal/apperrors"
	"github.com/moneypools/money_pools_app/internal/core/domain"
	portssvc "github.com/moneypools/money_pools_app/internal/core/ports/services"
	"github.com/moneypools/money_pools_app/internal/core/services"
	"github.com/moneypools/money_pools_app/internal/dto"
)

// --- Mock TransferRepository ---

type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) SaveTransfer(ctx context.Context, transfer domain.Transfer) ([]domain.AccountBalance, error) {
	args := m.Called(ctx, transfer)
	var balances []domain.AccountBalance
	if args.Get(0) != nil {
		balances = args.Get(0).([]domain.AccountBalance)
	}
	return balances, args.Error(1)
}

func (m *MockTransferRepository) FindTransferByID(ctx context.Context, transferID string) (*domain.Transfer, error) {
	args := m.Called(ctx, transferID)
	var transfer *domain.Transfer
	if args.Get(0) != nil {
		transfer = args.Get(0).(*domain.Transfer)
	}
	return transfer, args.Error(1)
}

func (m *MockTransferRepository) FindTransferByIdempotencyKey(ctx context.Context, key string) (*domain.Transfer, error) {
	args := m.Called(ctx, key)
	var transfer *domain.Transfer
	if args.Get(0) != nil {
		transfer = args.Get(0).(*domain.Transfer)
	}
	return transfer, args.Error(1)
}

func (m *MockTransferRepository) ListTransfersByUserID(ctx context.Context, userID string, limit, offset int) ([]domain.Transfer, error) {
	args := m.Called(ctx, userID, limit, offset)
	var transfers []domain.Transfer
	if args.Get(0) != nil {
		transfers = args.Get(0).([]domain.Transfer)
	}
	return transfers, args.Error(1)
}

func (m *MockTransferRepository) ListTransfersByPoolID(ctx context.Context, poolID string, limit, offset int) ([]domain.Transfer, error) {
	args := m.Called(ctx, poolID, limit, offset)
	var transfers []domain.Transfer
	if args.Get(0) != nil {
		transfers = args.Get(0).([]domain.Transfer)
	}
	return transfers, args.Error(1)
}

// --- Test Suite ---

type TransferServiceTestSuite struct {
	suite.Suite
	mockRepo *MockTransferRepository
	service  portssvc.TransferSvcFacade
}

func (suite *TransferServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockTransferRepository)
	suite.service = services.NewTransferService(suite.mockRepo)
}

func strPtr(s string) *string { return &s }

// --- CreateTransfer ---

func (suite *TransferServiceTestSuite) TestCreateTransfer_PersonToPool_Success() {
	ctx := context.Background()
	req := dto.CreateTransferRequest{
		FromUserID:  strPtr("user-a"),
		ToPoolID:    strPtr("pool-a"),
		Amount:      1500,
		Description: "weekly dues",
		Kind:        string(domain.PersonToPool),
	}
	balances := []domain.AccountBalance{
		{AccountKind: domain.AccountUser, AccountID: "user-a", Balance: 8500},
		{AccountKind: domain.AccountPool, AccountID: "pool-a", Balance: 1500},
	}

	suite.mockRepo.On("SaveTransfer", ctx, mock.MatchedBy(func(t domain.Transfer) bool {
		if t.TransferID == "" || t.Amount != 1500 || t.Kind != domain.PersonToPool {
			return false
		}
		// The expanded deltas must debit the sender and credit the pool by
		// exactly the transfer amount.
		deltas := t.BalanceDeltas()
		var sum int64
		for _, d := range deltas {
			sum += d.Delta
		}
		return len(deltas) == 2 && sum == 0
	})).Return(balances, nil).Once()

	transfer, gotBalances, err := suite.service.CreateTransfer(ctx, req, "user-a")

	suite.Require().NoError(err)
	suite.Require().NotNil(transfer)
	suite.Equal(domain.PersonToPool, transfer.Kind)
	suite.Equal(int64(1500), transfer.Amount)
	suite.Equal("user-a", transfer.CreatedBy)
	suite.NotEmpty(transfer.TransferID)
	suite.False(transfer.CreatedAt.IsZero())
	suite.Equal(balances, gotBalances)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransferServiceTestSuite) TestCreateTransfer_ZeroAmount_RejectedBeforeStorage() {
	ctx := context.Background()
	req := dto.CreateTransferRequest{
		FromUserID: strPtr("user-a"),
		ToUserID:   strPtr("user-b"),
		Amount:     0,
		Kind:       string(domain.PersonToPerson),
	}

	_, _, err := suite.service.CreateTransfer(ctx, req, "user-a")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveTransfer")
}

func (suite *TransferServiceTestSuite) TestCreateTransfer_NegativeAmount_Rejected() {
	ctx := context.Background()
	req := dto.CreateTransferRequest{
		FromUserID: strPtr("user-a"),
		ToUserID:   strPtr("user-b"),
		Amount:     -100,
		Kind:       string(domain.PersonToPerson),
	}

	_, _, err := suite.service.CreateTransfer(ctx, req, "user-a")

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveTransfer")
}

func (suite *TransferServiceTestSuite) TestCreateTransfer_MissingSender_Rejected() {
	ctx := context.Background()
	req := dto.CreateTransferRequest{
		ToUserID: strPtr("user-b"),
		Amount:   100,
		Kind:     string(domain.PersonToPerson),
	}

	_, _, err := suite.service.CreateTransfer(ctx, req, "user-a")

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveTransfer")
}

func (suite *TransferServiceTestSuite) TestCreateTransfer_KindPartyMismatch_Rejected() {
	ctx := context.Background()
	// pool_to_pool declared, but a user sender supplied.
	req := dto.CreateTransferRequest{
		FromUserID: strPtr("user-a"),
		ToPoolID:   strPtr("pool-b"),
		Amount:     100,
		Kind:       string(domain.PoolToPool),
	}

	_, _, err := suite.service.CreateTransfer(ctx, req, "user-a")

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveTransfer")
}

func (suite *TransferServiceTestSuite) TestCreateTransfer_SelfTransfer_Rejected() {
	ctx := context.Background()
	req := dto.CreateTransferRequest{
		FromUserID: strPtr("user-a"),
		ToUserID:   strPtr("user-a"),
		Amount:     100,
		Kind:       string(domain.PersonToPerson),
	}

	_, _, err := suite.service.CreateTransfer(ctx, req, "user-a")

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveTransfer")
}

func (suite *TransferServiceTestSuite) TestCreateTransfer_UnknownKind_Rejected() {
	ctx := context.Background()
	req := dto.CreateTransferRequest{
		FromUserID: strPtr("user-a"),
		ToUserID:   strPtr("user-b"),
		Amount:     100,
		Kind:       "wire_transfer",
	}

	_, _, err := suite.service.CreateTransfer(ctx, req, "user-a")

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveTransfer")
}

func (suite *TransferServiceTestSuite) TestCreateTransfer_AccountNotFound_NothingPersisted() {
	ctx := context.Background()
	req := dto.CreateTransferRequest{
		FromUserID: strPtr("user-a"),
		ToUserID:   strPtr("ghost"),
		Amount:     100,
		Kind:       string(domain.PersonToPerson),
	}

	suite.mockRepo.On("SaveTransfer", ctx, mock.AnythingOfType("domain.Transfer")).
		Return(nil, apperrors.ErrNotFound).Once()

	transfer, balances, err := suite.service.CreateTransfer(ctx, req, "user-a")

	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(transfer)
	suite.Nil(balances)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransferServiceTestSuite) TestCreateTransfer_InsufficientFunds_NothingPersisted() {
	ctx := context.Background()
	req := dto.CreateTransferRequest{
		FromUserID: strPtr("user-a"),
		ToUserID:   strPtr("user-b"),
		Amount:     100000,
		Kind:       string(domain.PersonToPerson),
	}

	suite.mockRepo.On("SaveTransfer", ctx, mock.AnythingOfType("domain.Transfer")).
		Return(nil, apperrors.ErrInsufficientFunds).Once()

	_, _, err := suite.service.CreateTransfer(ctx, req, "user-a")

	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TransferServiceTestSuite) TestCreateTransfer_IdempotentReplay_FastPath() {
	ctx := context.Background()
	key := "req-42"
	existing := &domain.Transfer{
		TransferID: "t-existing",
		TransferParties: domain.TransferParties{
			FromUserID: strPtr("user-a"),
			ToUserID:   strPtr("user-b"),
		},
		Amount:         100,
		Kind:           domain.PersonToPerson,
		IdempotencyKey: &key,
	}
	req := dto.CreateTransferRequest{
		FromUserID:     strPtr("user-a"),
		ToUserID:       strPtr("user-b"),
		Amount:         100,
		Kind:           string(domain.PersonToPerson),
		IdempotencyKey: &key,
	}

	suite.mockRepo.On("FindTransferByIdempotencyKey", ctx, key).Return(existing, nil).Once()

	transfer, _, err := suite.service.CreateTransfer(ctx, req, "user-a")

	suite.Require().NoError(err)
	suite.Equal("t-existing", transfer.TransferID)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveTransfer")
}

func (suite *TransferServiceTestSuite) TestCreateTransfer_IdempotencyRace_ReturnsWinner() {
	ctx := context.Background()
	key := "req-43"
	existing := &domain.Transfer{TransferID: "t-winner", IdempotencyKey: &key}
	req := dto.CreateTransferRequest{
		FromUserID:     strPtr("user-a"),
		ToUserID:       strPtr("user-b"),
		Amount:         100,
		Kind:           string(domain.PersonToPerson),
		IdempotencyKey: &key,
	}

	// First lookup misses, the insert hits the unique index, the re-fetch
	// finds the concurrent winner.
	suite.mockRepo.On("FindTransferByIdempotencyKey", ctx, key).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveTransfer", ctx, mock.AnythingOfType("domain.Transfer")).Return(nil, apperrors.ErrDuplicate).Once()
	suite.mockRepo.On("FindTransferByIdempotencyKey", ctx, key).Return(existing, nil).Once()

	transfer, _, err := suite.service.CreateTransfer(ctx, req, "user-a")

	suite.Require().NoError(err)
	suite.Equal("t-winner", transfer.TransferID)
	suite.mockRepo.AssertExpectations(suite.T())
}

// --- Reads ---

func (suite *TransferServiceTestSuite) TestGetTransferByID_Success() {
	ctx := context.Background()
	expected := &domain.Transfer{TransferID: "t-1", Amount: 100}
	suite.mockRepo.On("FindTransferByID", ctx, "t-1").Return(expected, nil).Once()

	transfer, err := suite.service.GetTransferByID(ctx, "t-1")

	suite.Require().NoError(err)
	suite.Equal(expected, transfer)
}

func (suite *TransferServiceTestSuite) TestGetTransferByID_NotFound() {
	ctx := context.Background()
	suite.mockRepo.On("FindTransferByID", ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetTransferByID(ctx, "missing")

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *TransferServiceTestSuite) TestListTransfersByUser() {
	ctx := context.Background()
	expected := []domain.Transfer{{TransferID: "t-2"}, {TransferID: "t-1"}}
	suite.mockRepo.On("ListTransfersByUserID", ctx, "user-a", 50, 0).Return(expected, nil).Once()

	transfers, err := suite.service.ListTransfersByUser(ctx, "user-a", 50, 0)

	suite.Require().NoError(err)
	suite.Equal(expected, transfers)
}

func (suite *TransferServiceTestSuite) TestListTransfersByPool() {
	ctx := context.Background()
	expected := []domain.Transfer{{TransferID: "t-3"}}
	suite.mockRepo.On("ListTransfersByPoolID", ctx, "pool-a", 10, 5).Return(expected, nil).Once()

	transfers, err := suite.service.ListTransfersByPool(ctx, "pool-a", 10, 5)

	suite.Require().NoError(err)
	suite.Equal(expected, transfers)
}

func TestTransferServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransferServiceTestSuite))
}
