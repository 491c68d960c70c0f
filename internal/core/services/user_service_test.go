package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/moneypools/money_pools_app/internal/apperrors"
	"github.com/moneypools/money_pools_app/internal/core/domain"
	portssvc "github.com/moneypools/money_pools_app/internal/core/ports/services"
	"github.com/moneypools/money_pools_app/internal/core/services"
	"github.com/moneypools/money_pools_app/internal/dto"
)

// --- Mock UserRepository ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, userID string, deletedBy string, now time.Time) error {
	args := m.Called(ctx, userID, deletedBy, now)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUsersByEmails(ctx context.Context, emails []string) (map[string]domain.User, error) {
	args := m.Called(ctx, emails)
	var users map[string]domain.User
	if args.Get(0) != nil {
		users = args.Get(0).(map[string]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Error(1)
}

// --- Test Suite ---

type UserServiceTestSuite struct {
	suite.Suite
	mockUserRepo *MockUserRepository
	service      portssvc.UserSvcFacade
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.service = services.NewUserService(suite.mockUserRepo)
}

// --- CreateUser ---

func (suite *UserServiceTestSuite) TestCreateUser_Success() {
	ctx := context.Background()
	req := dto.CreateUserRequest{
		Name:         "Test User",
		Email:        "test@example.com",
		PasswordHash: "$2a$10$hash",
	}

	suite.mockUserRepo.On("SaveUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Name == req.Name && u.Email == req.Email && u.Balance == 0 && u.IsActive
	})).Return(nil).Once()

	user, err := suite.service.CreateUser(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(user)
	suite.NotEmpty(user.UserID)
	suite.Equal(int64(0), user.Balance)
	suite.Equal(user.UserID, user.CreatedBy) // Self-registration
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestCreateUser_DuplicateEmail() {
	ctx := context.Background()
	req := dto.CreateUserRequest{Name: "Dup", Email: "dup@example.com", PasswordHash: "h"}

	suite.mockUserRepo.On("SaveUser", ctx, mock.AnythingOfType("domain.User")).
		Return(apperrors.ErrDuplicate).Once()

	user, err := suite.service.CreateUser(ctx, req)

	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Nil(user)
}

// --- Reads ---

func (suite *UserServiceTestSuite) TestGetUserByID_Success() {
	ctx := context.Background()
	expected := &domain.User{UserID: "user-1", Name: "A", Balance: 500}
	suite.mockUserRepo.On("FindUserByID", ctx, "user-1").Return(expected, nil).Once()

	user, err := suite.service.GetUserByID(ctx, "user-1")

	suite.Require().NoError(err)
	suite.Equal(expected, user)
}

func (suite *UserServiceTestSuite) TestGetUserByID_NotFound() {
	ctx := context.Background()
	suite.mockUserRepo.On("FindUserByID", ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetUserByID(ctx, "missing")

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *UserServiceTestSuite) TestListUsers() {
	ctx := context.Background()
	expected := []domain.User{{UserID: "u1"}, {UserID: "u2"}}
	suite.mockUserRepo.On("ListUsers", ctx, 20, 0).Return(expected, nil).Once()

	users, err := suite.service.ListUsers(ctx, 20, 0)

	suite.Require().NoError(err)
	suite.Len(users, 2)
}

// --- UpdateUser ---

func (suite *UserServiceTestSuite) TestUpdateUser_Success() {
	ctx := context.Background()
	newName := "Renamed"
	existing := &domain.User{UserID: "user-1", Name: "Old", Email: "a@example.com"}

	suite.mockUserRepo.On("FindUserByID", ctx, "user-1").Return(existing, nil).Once()
	suite.mockUserRepo.On("UpdateUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.UserID == "user-1" && u.Name == newName && u.LastUpdatedBy == "user-1"
	})).Return(nil).Once()

	user, err := suite.service.UpdateUser(ctx, "user-1", dto.UpdateUserRequest{Name: &newName}, "user-1")

	suite.Require().NoError(err)
	suite.Equal(newName, user.Name)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestUpdateUser_OtherUser_Forbidden() {
	ctx := context.Background()
	newName := "Hijack"

	user, err := suite.service.UpdateUser(ctx, "user-1", dto.UpdateUserRequest{Name: &newName}, "user-2")

	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(user)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "UpdateUser")
}

// --- DeleteUser ---

func (suite *UserServiceTestSuite) TestDeleteUser_Self_Success() {
	ctx := context.Background()
	suite.mockUserRepo.On("DeleteUser", ctx, "user-1", "user-1", mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	err := suite.service.DeleteUser(ctx, "user-1", "user-1")

	suite.Require().NoError(err)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestDeleteUser_OtherUser_Forbidden() {
	ctx := context.Background()

	err := suite.service.DeleteUser(ctx, "user-1", "user-2")

	assert.ErrorIs(suite.T(), err, apperrors.ErrForbidden)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "DeleteUser")
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
