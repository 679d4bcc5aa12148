package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"inkwell/app/docstore"
	"inkwell/app/docstore/memstore"
	"inkwell/app/docstore/sqlitestore"
	"inkwell/app/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
posts:
  - title: Hello World
    author: Alice
    content: The very first post on this blog.
    created_at: "2024-01-02T03:04:05.000Z"
    comments:
      - author: Bob
        text: Welcome!
        created_at: "2024-01-02T04:00:00.000Z"
      - author: Carol
        text: Nice start.
        created_at: "2024-01-02T05:00:00.000Z"
  - title: Second Post
    author: Bob
    content: Another post with enough content.
`

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestReadSeedFile(t *testing.T) {
	seed, err := ReadSeedFile(writeSeed(t, seedYAML))
	require.NoError(t, err)
	require.Len(t, seed.Posts, 2)
	assert.Equal(t, "Hello World", seed.Posts[0].Title)
	assert.Len(t, seed.Posts[0].Comments, 2)

	_, err = ReadSeedFile(writeSeed(t, "posts: [oops"))
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	seed, err := ReadSeedFile(writeSeed(t, seedYAML))
	require.NoError(t, err)

	gw := gateway.New(memstore.NewDB(), nil)
	posts, comments, err := Seed(ctx, gw, seed)
	require.NoError(t, err)
	assert.Equal(t, 2, posts)
	assert.Equal(t, 2, comments)

	all, err := gw.FetchAllPosts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	var hello string
	for _, p := range all {
		if p.Title == "Hello World" {
			hello = p.ID
			assert.Equal(t, "2024-01-02T03:04:05.000Z", p.CreatedAt)
		}
	}
	require.NotEmpty(t, hello)

	thread, err := gw.FetchCommentsForPost(ctx, hello)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "Bob", thread[0].Author)
	assert.Equal(t, "Carol", thread[1].Author)
}

func TestSeedValidation(t *testing.T) {
	seed := &SeedFile{Posts: []SeedPost{{Title: " ", Author: "Al", Content: "Long enough content"}}}
	_, _, err := Seed(context.Background(), gateway.New(memstore.NewDB(), nil), seed)
	require.Error(t, err)
	assert.Equal(t, "post 1: title is required", err.Error())

	seed = &SeedFile{Posts: []SeedPost{{
		Title: "Valid", Author: "Al", Content: "Long enough content",
		Comments: []SeedComment{{Author: "", Text: "hi"}},
	}}}
	posts, comments, err := Seed(context.Background(), gateway.New(memstore.NewDB(), nil), seed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "post 1 comment 1")
	assert.Equal(t, 1, posts)
	assert.Equal(t, 0, comments)
}

func TestSeedCommandSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "inkwell.db")
	cfgPath := writeTestConfig(t, "sqlite", dbPath)

	output, err := runCLI(t, cfgPath, "", "seed", writeSeed(t, seedYAML))
	require.NoError(t, err)
	assert.Equal(t, "Seeded 2 posts and 2 comments\n", output)

	backend, err := sqlitestore.Open(dbPath)
	require.NoError(t, err)
	db := docstore.New(backend)
	defer db.Close()

	posts, err := gateway.New(db, nil).FetchAllPosts(context.Background())
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}
