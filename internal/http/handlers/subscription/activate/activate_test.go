package activate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/wergeran/wergeran/internal/http/middlewarectx"
	"github.com/wergeran/wergeran/internal/models"
	"github.com/wergeran/wergeran/internal/services/subscription"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Status(ctx context.Context, user *models.User) (*models.SubscriptionStatus, error) {
	args := m.Called(ctx, user)
	var status *models.SubscriptionStatus
	if args.Get(0) != nil {
		status = args.Get(0).(*models.SubscriptionStatus)
	}
	return status, args.Error(1)
}

func (m *MockService) Redeem(ctx context.Context, user *models.User, key string) (*models.SubscriptionStatus, error) {
	args := m.Called(ctx, user, key)
	var status *models.SubscriptionStatus
	if args.Get(0) != nil {
		status = args.Get(0).(*models.SubscriptionStatus)
	}
	return status, args.Error(1)
}

func TestActivateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	user := &models.User{ID: "u1", Status: models.StatusActive}
	key := "3f0e9c36-2f9f-4f5b-9a46-2a0c9a8b5f11"
	freeStatus := &models.SubscriptionStatus{PlanID: models.PlanFree, Status: models.StatusActive}

	expires := time.Now().AddDate(0, 0, 7)
	weeklyStatus := &models.SubscriptionStatus{
		PlanID:    models.PlanWeekly,
		Status:    models.StatusActive,
		ExpiresAt: &expires,
	}

	tests := []struct {
		name           string
		requestBody    any
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "successful activation",
			requestBody: map[string]string{"activation_key": key},
			setupMock: func(m *MockService) {
				m.On("Status", mock.Anything, user).Return(freeStatus, nil)
				m.On("Redeem", mock.Anything, user, key).Return(weeklyStatus, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `پاکێج هاتە چالاککرن`,
		},
		{
			name:           "malformed key",
			requestBody:    map[string]string{"activation_key": "not-a-uuid"},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"code":"key_invalid"`,
		},
		{
			name:        "already active paid plan",
			requestBody: map[string]string{"activation_key": key},
			setupMock: func(m *MockService) {
				m.On("Status", mock.Anything, user).Return(weeklyStatus, nil)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `تە پاکێجەکا چالاک هەیە`,
		},
		{
			name:        "used key",
			requestBody: map[string]string{"activation_key": key},
			setupMock: func(m *MockService) {
				m.On("Status", mock.Anything, user).Return(freeStatus, nil)
				m.On("Redeem", mock.Anything, user, key).
					Return(nil, fmt.Errorf("services.subscription.Redeem: %w", subscription.ErrKeyInvalid))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"code":"key_invalid"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockService{}
			tt.setupMock(mockService)
			handler := New(logger, mockService)

			var body bytes.Buffer
			assert.NoError(t, json.NewEncoder(&body).Encode(tt.requestBody))

			req := httptest.NewRequest(http.MethodPost, "/api/subscription/activate", &body)
			req = req.WithContext(context.WithValue(req.Context(), middlewarectx.CurrentUser, user))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.True(t, strings.Contains(rr.Body.String(), tt.expectedBody),
				"body %q does not contain %q", rr.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
