package parsers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pythonSample = `import os
import sys
from typing import Optional

API_KEY = "test-api-key"
MAX_RETRIES = 5

database_url = "postgresql://localhost/testdb"


class User:
    def __init__(self, name: str, email: str):
        self.name = name
        self.email = email

    def validate(self) -> bool:
        return "@" in self.email

    def to_dict(self) -> dict:
        return {"name": self.name, "email": self.email}


class UserRepository:
    def __init__(self):
        self.users = []

    def add(self, user: User) -> None:
        self.users.append(user)

    def find_by_email(self, email: str) -> Optional[User]:
        for user in self.users:
            if user.email == email:
                return user
        return None


def create_user(name: str, email: str) -> User:
    return User(name, email)
`

func writeTempPython(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestPythonParser_ClassesAndMethods(t *testing.T) {
	t.Parallel()

	parser := NewPythonParser()
	path := writeTempPython(t, "simple.py", pythonSample)
	source, err := os.ReadFile(path)
	require.NoError(t, err)

	chunks, imports, err := parser.Parse(path, source)
	require.NoError(t, err)

	assert.Len(t, imports, 3)

	var classes, methods, functions int
	var userClass *CodeChunk
	var findByEmail *CodeChunk
	for i := range chunks {
		switch chunks[i].CodeType {
		case "class":
			classes++
			if chunks[i].Name == "User" {
				userClass = &chunks[i]
			}
		case "method":
			methods++
			if chunks[i].Name == "find_by_email" {
				findByEmail = &chunks[i]
			}
		case "function":
			functions++
		}
	}

	assert.Equal(t, 2, classes)
	assert.Equal(t, 6, methods)
	assert.Equal(t, 1, functions)

	require.NotNil(t, userClass)
	assert.Contains(t, userClass.Text, "class User:")

	require.NotNil(t, findByEmail)
	assert.Equal(t, "UserRepository", findByEmail.ClassName)
	assert.Contains(t, findByEmail.Text, "def find_by_email")
}

func TestPythonParser_StandaloneFunction(t *testing.T) {
	t.Parallel()

	parser := NewPythonParser()
	path := writeTempPython(t, "simple.py", pythonSample)
	source, err := os.ReadFile(path)
	require.NoError(t, err)

	chunks, _, err := parser.Parse(path, source)
	require.NoError(t, err)

	var createUser *CodeChunk
	for i := range chunks {
		if chunks[i].Name == "create_user" && chunks[i].CodeType == "function" {
			createUser = &chunks[i]
		}
	}
	require.NotNil(t, createUser)
	assert.Empty(t, createUser.ClassName)
	assert.Contains(t, createUser.Text, "def create_user")
}

func TestPythonParser_LineRanges(t *testing.T) {
	t.Parallel()

	parser := NewPythonParser()
	path := writeTempPython(t, "simple.py", pythonSample)
	source, err := os.ReadFile(path)
	require.NoError(t, err)

	chunks, _, err := parser.Parse(path, source)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, c := range chunks {
		assert.Greater(t, c.StartLine, 0)
		assert.GreaterOrEqual(t, c.EndLine, c.StartLine)
	}
}

func TestPythonParser_EmptyFile(t *testing.T) {
	t.Parallel()

	parser := NewPythonParser()
	path := writeTempPython(t, "empty.py", "")
	source, err := os.ReadFile(path)
	require.NoError(t, err)

	chunks, imports, err := parser.Parse(path, source)
	require.NoError(t, err)
	assert.Empty(t, chunks)
	assert.Empty(t, imports)
}

func TestPythonParser_DecoratorsDoNotBreakParsing(t *testing.T) {
	t.Parallel()

	content := `import functools

@functools.lru_cache(maxsize=128)
def cached_function(x: int) -> int:
    return x * 2

class Service:
    @property
    def name(self) -> str:
        return "service"

    @staticmethod
    def static_method():
        return True
`
	parser := NewPythonParser()
	path := writeTempPython(t, "decorators.py", content)
	source, err := os.ReadFile(path)
	require.NoError(t, err)

	chunks, _, err := parser.Parse(path, source)
	require.NoError(t, err)

	var foundFunc, foundClass bool
	for _, c := range chunks {
		if c.Name == "cached_function" && c.CodeType == "function" {
			foundFunc = true
		}
		if c.Name == "Service" && c.CodeType == "class" {
			foundClass = true
		}
	}
	assert.True(t, foundFunc, "cached_function should be extracted despite decorator")
	assert.True(t, foundClass, "Service class should be extracted")
}

func TestPythonParser_AsyncFunctions(t *testing.T) {
	t.Parallel()

	content := `import asyncio

async def fetch_data(url: str) -> dict:
    await asyncio.sleep(1)
    return {"url": url}

class AsyncService:
    async def process(self, data: dict) -> bool:
        await asyncio.sleep(0.5)
        return True
`
	parser := NewPythonParser()
	path := writeTempPython(t, "async.py", content)
	source, err := os.ReadFile(path)
	require.NoError(t, err)

	chunks, _, err := parser.Parse(path, source)
	require.NoError(t, err)

	var foundFetch, foundProcess bool
	for _, c := range chunks {
		if c.Name == "fetch_data" && c.CodeType == "function" {
			foundFetch = true
		}
		if c.Name == "process" && c.CodeType == "method" && c.ClassName == "AsyncService" {
			foundProcess = true
		}
	}
	assert.True(t, foundFetch)
	assert.True(t, foundProcess)
}
