package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/open-rag/reporag/internal/apperr"
)

func TestExitCodeFor(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil-coded error", errors.New("boom"), 1},
		{"config error", apperr.New(apperr.CodeConfigError, "bad config"), 2},
		{"vector store error", apperr.New(apperr.CodeVectorStoreUnavailable, "down"), 3},
		{"other apperr code", apperr.New(apperr.CodeValidation, "bad arg"), 1},
		{"partial failure", exitErr{code: 4, msg: "some files skipped"}, 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, exitCodeFor(tc.err))
		})
	}
}

func TestEnvString_FallsBackToDefault(t *testing.T) {
	t.Setenv("REPORAG_TEST_ENV_STRING", "")
	assert.Equal(t, "fallback", envString("REPORAG_TEST_ENV_STRING", "fallback"))

	t.Setenv("REPORAG_TEST_ENV_STRING", "configured")
	assert.Equal(t, "configured", envString("REPORAG_TEST_ENV_STRING", "fallback"))
}

func TestEnvInt_FallsBackOnMissingOrInvalid(t *testing.T) {
	t.Setenv("REPORAG_TEST_ENV_INT", "")
	assert.Equal(t, 384, envInt("REPORAG_TEST_ENV_INT", 384))

	t.Setenv("REPORAG_TEST_ENV_INT", "not-a-number")
	assert.Equal(t, 384, envInt("REPORAG_TEST_ENV_INT", 384))

	t.Setenv("REPORAG_TEST_ENV_INT", "768")
	assert.Equal(t, 768, envInt("REPORAG_TEST_ENV_INT", 384))
}
