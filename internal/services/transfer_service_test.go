package services

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/fieldops/duty-assignment-api/internal/errors"
	"github.com/fieldops/duty-assignment-api/internal/models"
	"github.com/fieldops/duty-assignment-api/internal/repository"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TransferServiceTestSuite defines the test suite for TransferService
type TransferServiceTestSuite struct {
	suite.Suite
	db          *gorm.DB
	store       repository.AssignmentStore
	notifier    *fakeNotifier
	assignments *AssignmentService
	transfers   *TransferService

	operator *models.Operator
	postA    *models.Post
	postB    *models.Post
	manager  *models.Supervisor
}

// SetupTest runs before each test and seeds an operator ACTIVE at post A
func (suite *TransferServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)

	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	err = suite.db.AutoMigrate(
		&models.Operator{},
		&models.Supervisor{},
		&models.Post{},
		&models.Assignment{},
		&models.Allowance{},
	)
	suite.Require().NoError(err)

	suite.store = repository.NewAssignmentStore(suite.db)
	persons := repository.NewPersonDirectory(suite.db)
	posts := repository.NewPostDirectory(suite.db)

	suite.notifier = &fakeNotifier{}
	activity := NewLogActivityLogger(logrus.New())
	eligibility := NewEligibilityValidator(persons, suite.store)
	capacity := NewCapacityGuard(posts, suite.store)

	suite.assignments = NewAssignmentService(
		suite.store, persons, posts, eligibility, capacity, suite.notifier, activity,
	)
	suite.transfers = NewTransferService(
		suite.store, persons, posts, suite.notifier, activity,
	)

	suite.operator = &models.Operator{ID: 100, BadgeNumber: "OP-1", FullName: "Operator OP-1", EmploymentStatus: models.EmploymentActive}
	suite.db.Create(suite.operator)
	suite.postA = &models.Post{Name: "Post A", LocationID: 1, RequiredHeadcount: 2, IsActive: true}
	suite.db.Create(suite.postA)
	suite.postB = &models.Post{Name: "Post B", LocationID: 2, RequiredHeadcount: 1, IsActive: true}
	suite.db.Create(suite.postB)
	suite.manager = &models.Supervisor{ID: 500, FullName: "Manager", Role: models.RoleManager}
	suite.db.Create(suite.manager)

	_, err = suite.assignments.Create(context.Background(), CreateAssignmentInput{
		OperatorID:     suite.operator.ID,
		PostID:         suite.postA.ID,
		SupervisorID:   suite.manager.ID,
		StartDate:      time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		AssignmentType: models.AssignmentTypePermanent,
		ShiftType:      models.ShiftDay,
		RequestedBy:    Actor{ID: suite.manager.ID, Role: models.RoleManager, DisplayName: "Manager"},
	})
	suite.Require().NoError(err)
}

func (suite *TransferServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TransferServiceTestSuite) transferInput(requestedBy Actor) TransferInput {
	return TransferInput{
		OperatorID:      suite.operator.ID,
		NewPostID:       suite.postB.ID,
		NewSupervisorID: suite.manager.ID,
		NewShiftType:    models.ShiftNight,
		TransferDate:    time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		Reason:          "coverage gap at post B",
		RequestedBy:     requestedBy,
	}
}

func (suite *TransferServiceTestSuite) currentAssignment() *models.Assignment {
	var assignment models.Assignment
	err := suite.db.Where("operator_id = ? AND supersedes_id IS NULL", suite.operator.ID).First(&assignment).Error
	suite.Require().NoError(err)
	return &assignment
}

// TestTransfer_Success verifies lineage, dates and statuses on both sides
func (suite *TransferServiceTestSuite) TestTransfer_Success() {
	old := suite.currentAssignment()

	successor, err := suite.transfers.Transfer(context.Background(),
		suite.transferInput(Actor{ID: suite.manager.ID, Role: models.RoleManager, DisplayName: "Manager"}))
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.AssignmentStatusActive, successor.Status)
	assert.Equal(suite.T(), suite.postB.ID, successor.PostID)
	assert.Equal(suite.T(), suite.postB.LocationID, successor.LocationID)
	assert.Equal(suite.T(), models.ShiftNight, successor.ShiftType)
	suite.Require().NotNil(successor.SupersedesID)
	assert.Equal(suite.T(), old.ID, *successor.SupersedesID)
	// Assignment type carries over from the predecessor
	assert.Equal(suite.T(), old.AssignmentType, successor.AssignmentType)

	var predecessor models.Assignment
	suite.Require().NoError(suite.db.First(&predecessor, old.ID).Error)
	assert.Equal(suite.T(), models.AssignmentStatusTransferred, predecessor.Status)
	suite.Require().NotNil(predecessor.EndDate)
	assert.True(suite.T(), predecessor.EndDate.Equal(time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(suite.T(), "coverage gap at post B", predecessor.TransferReason)

	assert.NotEmpty(suite.T(), suite.notifier.sentTo(suite.operator.ID))
}

// TestTransfer_PendingSuccessorForFrontline verifies the successor goes
// through the same authority resolution as any create
func (suite *TransferServiceTestSuite) TestTransfer_PendingSuccessorForFrontline() {
	frontline := &models.Supervisor{ID: 501, FullName: "Frontline", Role: models.RoleFrontlineSupervisor}
	suite.db.Create(frontline)

	successor, err := suite.transfers.Transfer(context.Background(),
		suite.transferInput(Actor{ID: frontline.ID, Role: models.RoleFrontlineSupervisor, DisplayName: "Frontline"}))
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.AssignmentStatusPending, successor.Status)
	assert.Nil(suite.T(), successor.DecidedByID)
}

// TestTransfer_TargetAtCapacity_OldStaysActive is the atomicity property: a
// failed successor leaves the original assignment untouched
func (suite *TransferServiceTestSuite) TestTransfer_TargetAtCapacity_OldStaysActive() {
	// Fill post B (headcount 1) with another operator
	other := &models.Operator{ID: 101, BadgeNumber: "OP-2", FullName: "Operator OP-2", EmploymentStatus: models.EmploymentActive}
	suite.db.Create(other)
	_, err := suite.assignments.Create(context.Background(), CreateAssignmentInput{
		OperatorID:     other.ID,
		PostID:         suite.postB.ID,
		SupervisorID:   suite.manager.ID,
		StartDate:      time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		AssignmentType: models.AssignmentTypePermanent,
		ShiftType:      models.ShiftDay,
		RequestedBy:    Actor{ID: suite.manager.ID, Role: models.RoleManager, DisplayName: "Manager"},
	})
	suite.Require().NoError(err)

	old := suite.currentAssignment()

	// A general supervisor cannot override capacity
	general := &models.Supervisor{ID: 502, FullName: "General", Role: models.RoleGeneralSupervisor}
	suite.db.Create(general)
	_, err = suite.transfers.Transfer(context.Background(),
		suite.transferInput(Actor{ID: general.ID, Role: models.RoleGeneralSupervisor, DisplayName: "General"}))
	suite.Require().Error(err)
	assert.Equal(suite.T(), apperrors.KindPostUnavailable, apperrors.KindOf(err))

	var predecessor models.Assignment
	suite.Require().NoError(suite.db.First(&predecessor, old.ID).Error)
	assert.Equal(suite.T(), models.AssignmentStatusActive, predecessor.Status)
	assert.Nil(suite.T(), predecessor.EndDate)
	assert.Empty(suite.T(), predecessor.TransferReason)
}

// TestTransfer_NoActiveAssignment verifies the failure when the operator has
// nothing to transfer from
func (suite *TransferServiceTestSuite) TestTransfer_NoActiveAssignment() {
	idle := &models.Operator{ID: 102, BadgeNumber: "OP-3", FullName: "Operator OP-3", EmploymentStatus: models.EmploymentActive}
	suite.db.Create(idle)

	input := suite.transferInput(Actor{ID: suite.manager.ID, Role: models.RoleManager, DisplayName: "Manager"})
	input.OperatorID = idle.ID

	_, err := suite.transfers.Transfer(context.Background(), input)
	suite.Require().Error(err)
	assert.Equal(suite.T(), apperrors.KindNotFound, apperrors.KindOf(err))
}

// TestTransfer_PendingCurrentIsNotTransferable verifies only ACTIVE
// assignments can be transferred
func (suite *TransferServiceTestSuite) TestTransfer_PendingCurrentIsNotTransferable() {
	pendingOp := &models.Operator{ID: 103, BadgeNumber: "OP-4", FullName: "Operator OP-4", EmploymentStatus: models.EmploymentActive}
	suite.db.Create(pendingOp)
	frontline := &models.Supervisor{ID: 503, FullName: "Frontline", Role: models.RoleFrontlineSupervisor}
	suite.db.Create(frontline)

	_, err := suite.assignments.Create(context.Background(), CreateAssignmentInput{
		OperatorID:     pendingOp.ID,
		PostID:         suite.postA.ID,
		SupervisorID:   frontline.ID,
		StartDate:      time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		AssignmentType: models.AssignmentTypeRelief,
		ShiftType:      models.ShiftDay,
		RequestedBy:    Actor{ID: frontline.ID, Role: models.RoleFrontlineSupervisor, DisplayName: "Frontline"},
	})
	suite.Require().NoError(err)

	input := suite.transferInput(Actor{ID: suite.manager.ID, Role: models.RoleManager, DisplayName: "Manager"})
	input.OperatorID = pendingOp.ID

	_, err = suite.transfers.Transfer(context.Background(), input)
	suite.Require().Error(err)
	assert.Equal(suite.T(), apperrors.KindInvalidTransition, apperrors.KindOf(err))
}

// TestTransfer_InvalidPayload verifies the payload rules
func (suite *TransferServiceTestSuite) TestTransfer_InvalidPayload() {
	actor := Actor{ID: suite.manager.ID, Role: models.RoleManager, DisplayName: "Manager"}

	input := suite.transferInput(actor)
	input.Reason = "  "
	_, err := suite.transfers.Transfer(context.Background(), input)
	assert.Equal(suite.T(), apperrors.KindInvalidPayload, apperrors.KindOf(err))

	input = suite.transferInput(actor)
	input.TransferDate = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC) // before start
	_, err = suite.transfers.Transfer(context.Background(), input)
	assert.Equal(suite.T(), apperrors.KindInvalidPayload, apperrors.KindOf(err))

	input = suite.transferInput(actor)
	input.NewPostID = suite.postA.ID // same post
	_, err = suite.transfers.Transfer(context.Background(), input)
	assert.Equal(suite.T(), apperrors.KindInvalidPayload, apperrors.KindOf(err))
}

func TestTransferServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransferServiceTestSuite))
}
