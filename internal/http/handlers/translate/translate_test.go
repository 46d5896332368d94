package translate

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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/wergeran/wergeran/internal/http/middlewarectx"
	"github.com/wergeran/wergeran/internal/models"
	"github.com/wergeran/wergeran/internal/services/quota"
	translatesvc "github.com/wergeran/wergeran/internal/services/translate"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Translate(ctx context.Context, user *models.User, text, dialect string) (*translatesvc.Result, error) {
	args := m.Called(ctx, user, text, dialect)
	var res *translatesvc.Result
	if args.Get(0) != nil {
		res = args.Get(0).(*translatesvc.Result)
	}
	return res, args.Error(1)
}

type MockStatus struct {
	mock.Mock
}

func (m *MockStatus) Status(ctx context.Context, user *models.User) (*models.SubscriptionStatus, error) {
	args := m.Called(ctx, user)
	var status *models.SubscriptionStatus
	if args.Get(0) != nil {
		status = args.Get(0).(*models.SubscriptionStatus)
	}
	return status, args.Error(1)
}

func TestTranslateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	user := &models.User{ID: "u1", Status: models.StatusActive}
	snapshot := &models.SubscriptionStatus{PlanID: models.PlanFree, Status: models.StatusActive}

	tests := []struct {
		name           string
		requestBody    any
		withUser       bool
		setupMock      func(*MockService, *MockStatus)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "successful translation",
			requestBody: map[string]string{"text": "hello", "dialect": "both"},
			withUser:    true,
			setupMock: func(m *MockService, _ *MockStatus) {
				m.On("Translate", mock.Anything, user, "hello", "both").
					Return(&translatesvc.Result{
						Translations:  models.TranslationPair{Behdini: "سڵاڤ", Sorani: "سڵاو"},
						Status:        snapshot,
						TranslationID: "tid-1",
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"translation_id":"tid-1"`,
		},
		{
			name:        "dialect defaults to both",
			requestBody: map[string]string{"text": "hello"},
			withUser:    true,
			setupMock: func(m *MockService, _ *MockStatus) {
				m.On("Translate", mock.Anything, user, "hello", "both").
					Return(&translatesvc.Result{
						Translations:  models.TranslationPair{Behdini: "سڵاڤ"},
						Status:        snapshot,
						TranslationID: "tid-2",
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"translation_id":"tid-2"`,
		},
		{
			name:           "missing text",
			requestBody:    map[string]string{"dialect": "both"},
			withUser:       true,
			setupMock:      func(_ *MockService, _ *MockStatus) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field Text is a required field`,
		},
		{
			name:           "unknown dialect",
			requestBody:    map[string]string{"text": "hello", "dialect": "kurmanji"},
			withUser:       true,
			setupMock:      func(_ *MockService, _ *MockStatus) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field Dialect has an unsupported value`,
		},
		{
			name:        "quota exceeded",
			requestBody: map[string]string{"text": "hello"},
			withUser:    true,
			setupMock: func(m *MockService, s *MockStatus) {
				m.On("Translate", mock.Anything, user, "hello", "both").
					Return(nil, fmt.Errorf("services.translate.Translate: %w", quota.ErrQuotaExceeded))
				s.On("Status", mock.Anything, user).Return(snapshot, nil)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"code":"quota_exceeded"`,
		},
		{
			name:        "upstream failed",
			requestBody: map[string]string{"text": "hello"},
			withUser:    true,
			setupMock: func(m *MockService, s *MockStatus) {
				m.On("Translate", mock.Anything, user, "hello", "both").
					Return(nil, fmt.Errorf("services.translate.Translate: %w", translatesvc.ErrUpstreamFailed))
				s.On("Status", mock.Anything, user).Return(snapshot, nil)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"code":"upstream_unavailable"`,
		},
		{
			name:           "unauthenticated",
			requestBody:    map[string]string{"text": "hello"},
			withUser:       false,
			setupMock:      func(_ *MockService, _ *MockStatus) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"code":"unauthorized"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockService{}
			mockStatus := &MockStatus{}
			tt.setupMock(mockService, mockStatus)
			handler := New(logger, mockService, mockStatus)

			var body bytes.Buffer
			assert.NoError(t, json.NewEncoder(&body).Encode(tt.requestBody))

			req := httptest.NewRequest(http.MethodPost, "/api/translate", &body)
			if tt.withUser {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.CurrentUser, user))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.True(t, strings.Contains(rr.Body.String(), tt.expectedBody),
				"body %q does not contain %q", rr.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
			mockStatus.AssertExpectations(t)
		})
	}
}
