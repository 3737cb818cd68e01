package parsers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tsSample = `import { Logger } from "./logger";
import * as path from "path";

export const DEFAULT_TIMEOUT = 30;

export function createLogger(name: string): Logger {
  return new Logger(name);
}

const helper = (x: number): number => {
  return x * 2;
};

export class UserService {
  private users: string[] = [];

  constructor(private logger: Logger) {}

  addUser(name: string): void {
    this.users.push(name);
  }

  findUser(name: string): string | undefined {
    return this.users.find((u) => u === name);
  }
}
`

func writeTempTS(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestTypeScriptParser_ClassAndMethods(t *testing.T) {
	t.Parallel()

	parser := NewTypeScriptParser()
	path := writeTempTS(t, "simple.ts", tsSample)
	source, err := os.ReadFile(path)
	require.NoError(t, err)

	chunks, imports, err := parser.Parse(path, source)
	require.NoError(t, err)
	assert.Len(t, imports, 2)

	var class *CodeChunk
	var addUser, findUser *CodeChunk
	for i := range chunks {
		switch {
		case chunks[i].CodeType == "class" && chunks[i].Name == "UserService":
			class = &chunks[i]
		case chunks[i].CodeType == "method" && chunks[i].Name == "addUser":
			addUser = &chunks[i]
		case chunks[i].CodeType == "method" && chunks[i].Name == "findUser":
			findUser = &chunks[i]
		}
	}

	require.NotNil(t, class)
	assert.Contains(t, class.Text, "class UserService")

	require.NotNil(t, addUser)
	assert.Equal(t, "UserService", addUser.ClassName)

	require.NotNil(t, findUser)
	assert.Equal(t, "UserService", findUser.ClassName)
}

func TestTypeScriptParser_TopLevelFunctions(t *testing.T) {
	t.Parallel()

	parser := NewTypeScriptParser()
	path := writeTempTS(t, "simple.ts", tsSample)
	source, err := os.ReadFile(path)
	require.NoError(t, err)

	chunks, _, err := parser.Parse(path, source)
	require.NoError(t, err)

	var createLogger, helper *CodeChunk
	for i := range chunks {
		if chunks[i].CodeType == "function" && chunks[i].Name == "createLogger" {
			createLogger = &chunks[i]
		}
		if chunks[i].CodeType == "function" && chunks[i].Name == "helper" {
			helper = &chunks[i]
		}
	}

	require.NotNil(t, createLogger, "function declarations should be extracted")
	require.NotNil(t, helper, "const arrow-function bindings should be extracted")
}

func TestTypeScriptParser_EmptyFile(t *testing.T) {
	t.Parallel()

	parser := NewTypeScriptParser()
	path := writeTempTS(t, "empty.ts", "")
	source, err := os.ReadFile(path)
	require.NoError(t, err)

	chunks, imports, err := parser.Parse(path, source)
	require.NoError(t, err)
	assert.Empty(t, chunks)
	assert.Empty(t, imports)
}

func TestJavaScriptParser_ReusesTSXGrammar(t *testing.T) {
	t.Parallel()

	content := `const add = (a, b) => a + b;

class Counter {
  increment() {
    this.value += 1;
  }
}
`
	parser := NewJavaScriptParser()
	path := writeTempTS(t, "simple.js", content)
	source, err := os.ReadFile(path)
	require.NoError(t, err)

	chunks, _, err := parser.Parse(path, source)
	require.NoError(t, err)

	var foundAdd, foundIncrement bool
	for _, c := range chunks {
		if c.Name == "add" && c.CodeType == "function" {
			foundAdd = true
		}
		if c.Name == "increment" && c.CodeType == "method" && c.ClassName == "Counter" {
			foundIncrement = true
		}
	}
	assert.True(t, foundAdd)
	assert.True(t, foundIncrement)
}
