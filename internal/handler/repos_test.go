package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"portfolio-api/internal/github"
	"portfolio-api/internal/models"
)

// MockRepoService is a mock implementation of the RepoService interface.
type MockRepoService struct {
	mock.Mock
}

func (m *MockRepoService) RefreshRepos(ctx context.Context, username string) ([]models.RepoSummary, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RepoSummary), args.Error(1)
}

// MockRawRepoLister is a mock implementation of the RawRepoLister interface.
type MockRawRepoLister struct {
	mock.Mock
}

func (m *MockRawRepoLister) PublicReposRaw(ctx context.Context, username string) ([]byte, int, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Int(1), args.Error(2)
}

func TestRepoHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)

	repos := []models.RepoSummary{
		{ID: "1", Name: "portfolio", HTMLURL: "https://github.com/halimcho/portfolio"},
	}

	t.Run("uses configured default username", func(t *testing.T) {
		mockSvc := new(MockRepoService)
		mockSvc.On("RefreshRepos", mock.Anything, "halimcho").Return(repos, nil)
		h := NewRepoHandler(mockSvc, nil, "halimcho")

		w := doGet(t, h.List, "/api/github/repos")
		assert.Equal(t, http.StatusOK, w.Code)

		var got []models.RepoSummary
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, repos, got)
		mockSvc.AssertExpectations(t)
	})

	t.Run("explicit username overrides the default", func(t *testing.T) {
		mockSvc := new(MockRepoService)
		mockSvc.On("RefreshRepos", mock.Anything, "someone-else").Return(repos, nil)
		h := NewRepoHandler(mockSvc, nil, "halimcho")

		w := doGet(t, h.List, "/api/github/repos?username=someone-else")
		assert.Equal(t, http.StatusOK, w.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("upstream error relays status and body", func(t *testing.T) {
		mockSvc := new(MockRepoService)
		mockSvc.On("RefreshRepos", mock.Anything, "halimcho").
			Return(nil, &github.UpstreamError{Status: 403, Body: `{"message":"rate limited"}`})
		h := NewRepoHandler(mockSvc, nil, "halimcho")

		w := doGet(t, h.List, "/api/github/repos")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"message":"rate limited"}`, w.Body.String())
	})

	t.Run("other failures are internal errors", func(t *testing.T) {
		mockSvc := new(MockRepoService)
		mockSvc.On("RefreshRepos", mock.Anything, "halimcho").Return(nil, assert.AnError)
		h := NewRepoHandler(mockSvc, nil, "halimcho")

		w := doGet(t, h.List, "/api/github/repos")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRepoHandler_PublicProxy(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("missing user parameter", func(t *testing.T) {
		h := NewRepoHandler(nil, new(MockRawRepoLister), "halimcho")

		w := doGet(t, h.PublicProxy, "/repos")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"missing user"}`, w.Body.String())
	})

	t.Run("relays upstream body and status verbatim", func(t *testing.T) {
		mockRaw := new(MockRawRepoLister)
		mockRaw.On("PublicReposRaw", mock.Anything, "halimcho").
			Return([]byte(`[{"name":"portfolio"}]`), http.StatusOK, nil)
		h := NewRepoHandler(nil, mockRaw, "halimcho")

		w := doGet(t, h.PublicProxy, "/repos?user=halimcho")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `[{"name":"portfolio"}]`, w.Body.String())
		mockRaw.AssertExpectations(t)
	})

	t.Run("relays upstream non-success untouched", func(t *testing.T) {
		mockRaw := new(MockRawRepoLister)
		mockRaw.On("PublicReposRaw", mock.Anything, "ghost").
			Return([]byte(`{"message":"Not Found"}`), http.StatusNotFound, nil)
		h := NewRepoHandler(nil, mockRaw, "halimcho")

		w := doGet(t, h.PublicProxy, "/repos?user=ghost")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"message":"Not Found"}`, w.Body.String())
	})

	t.Run("transport failure is a bad gateway", func(t *testing.T) {
		mockRaw := new(MockRawRepoLister)
		mockRaw.On("PublicReposRaw", mock.Anything, "halimcho").
			Return(nil, 0, assert.AnError)
		h := NewRepoHandler(nil, mockRaw, "halimcho")

		w := doGet(t, h.PublicProxy, "/repos?user=halimcho")
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}
