package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/forklift-safety/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// MockCheckCollection is a mock implementation of db.CheckCollection
type MockCheckCollection struct {
	mock.Mock
}

func (m *MockCheckCollection) InsertCheck(ctx context.Context, check models.Check) (*models.Check, error) {
	args := m.Called(ctx, check)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Check), args.Error(1)
}

func (m *MockCheckCollection) FindCheckByID(ctx context.Context, id string) (*models.Check, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Check), args.Error(1)
}

func (m *MockCheckCollection) FindChecks(ctx context.Context, filter bson.M) ([]models.Check, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Check), args.Error(1)
}

func TestCheckHandler_SubmitCheck(t *testing.T) {
	t.Run("all items passing yields an approved check", func(t *testing.T) {
		collection := new(MockCheckCollection)
		handler := NewCheckHandler(collection)
		collection.On("InsertCheck", mock.Anything, mock.AnythingOfType("models.Check")).
			Run(func(args mock.Arguments) {
				check := args.Get(1).(models.Check)
				assert.Equal(t, models.CheckApproved, check.Status)
				assert.Equal(t, "biz-1", check.BusinessID)
				assert.Equal(t, "user-1", check.UserID)
				assert.False(t, check.CompletedAt.IsZero())
			}).
			Return(&models.Check{Status: models.CheckApproved}, nil)

		req := authenticatedRequest("POST", "/api/checks", map[string]interface{}{
			"vehicle_id": "veh-1",
			"items": []models.CheckItem{
				{Name: "brakes", Passed: true},
				{Name: "horn", Passed: true},
			},
		}, operatorClaims())
		w := httptest.NewRecorder()
		handler.SubmitCheck(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		collection.AssertExpectations(t)
	})

	t.Run("a failing item yields a rejected check", func(t *testing.T) {
		collection := new(MockCheckCollection)
		handler := NewCheckHandler(collection)
		collection.On("InsertCheck", mock.Anything, mock.AnythingOfType("models.Check")).
			Run(func(args mock.Arguments) {
				check := args.Get(1).(models.Check)
				assert.Equal(t, models.CheckRejected, check.Status)
			}).
			Return(&models.Check{Status: models.CheckRejected}, nil)

		req := authenticatedRequest("POST", "/api/checks", map[string]interface{}{
			"vehicle_id": "veh-1",
			"items": []models.CheckItem{
				{Name: "brakes", Passed: true},
				{Name: "hydraulics", Passed: false, Comment: "slow lift"},
			},
		}, operatorClaims())
		w := httptest.NewRecorder()
		handler.SubmitCheck(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		collection.AssertExpectations(t)
	})

	t.Run("requires at least one item", func(t *testing.T) {
		handler := NewCheckHandler(new(MockCheckCollection))

		req := authenticatedRequest("POST", "/api/checks", map[string]interface{}{
			"vehicle_id": "veh-1",
		}, operatorClaims())
		w := httptest.NewRecorder()
		handler.SubmitCheck(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCheckHandler_ListChecks(t *testing.T) {
	t.Run("filters by business and vehicle", func(t *testing.T) {
		collection := new(MockCheckCollection)
		handler := NewCheckHandler(collection)
		collection.On("FindChecks", mock.Anything, bson.M{"business_id": "biz-1", "vehicle_id": "veh-1"}).
			Return([]models.Check{{VehicleID: "veh-1", Status: models.CheckApproved}}, nil)

		req := authenticatedRequest("GET", "/api/checks?vehicle_id=veh-1", nil, operatorClaims())
		w := httptest.NewRecorder()
		handler.ListChecks(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var got []models.Check
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		require.Len(t, got, 1)
		collection.AssertExpectations(t)
	})
}
