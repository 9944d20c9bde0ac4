package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopher0727/LineDesk/internal/repositories"
)

func TestRowParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		param string
		want  int
		ok    bool
	}{
		{"2", repositories.MemberFirstDataRow, true},
		{"10", 10, true},
		{"1", 0, false}, // 表头行不可操作
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "row", Value: tc.param}}

		got, ok := rowParam(c)
		require.Equal(t, tc.ok, ok, "rowParam(%q)", tc.param)
		if tc.ok {
			assert.Equal(t, tc.want, got)
		} else {
			assert.Equal(t, http.StatusBadRequest, w.Code, "rowParam(%q)", tc.param)
		}
	}
}
