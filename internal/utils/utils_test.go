package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskmanager-api/internal/constants"
)

func newContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestGetPaginationParams(t *testing.T) {
	p := GetPaginationParams(newContext("/tasks?page=3&limit=10"))
	assert.Equal(t, PaginationParams{Page: 3, Limit: 10, Offset: 20}, p)

	p = GetPaginationParams(newContext("/tasks?page=0&limit=1000"))
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, constants.DefaultPageSize, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestParseQueries(t *testing.T) {
	c := newContext("/tasks?due_after=2025-03-01&overdue=true&task=7")

	d, err := ParseDateQuery(c, "due_after")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "2025-03-01", d.String())

	missing, err := ParseDateQuery(c, "due_before")
	require.NoError(t, err)
	assert.Nil(t, missing)

	overdue, err := ParseBoolQuery(c, "overdue")
	require.NoError(t, err)
	assert.True(t, overdue)

	id, err := ParseIDQuery(c, "task")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), *id)

	_, err = ParseDateQuery(newContext("/tasks?due_after=03/01/2025"), "due_after")
	assert.Error(t, err)
}
